package contract

import "context"

// Session is the live call the receptionist is speaking on. Audio, turn-taking
// and interruption handling live behind it.
type Session interface {
	ID() string
	Say(ctx context.Context, text string, allowInterruptions bool) error
	History() []ChatMessage
	Shutdown(ctx context.Context) error
}

type sessionKey struct{}

// WithSession attaches the live session to ctx for tools that act on the call.
func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

func SessionFrom(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(sessionKey{}).(Session)
	return s, ok && s != nil
}
