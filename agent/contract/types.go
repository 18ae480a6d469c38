package contract

// Tool names exposed to the dialogue model.
const (
	ToolInventoryCheck      = "inventory_check"
	ToolGetStoreHours       = "get_store_hours"
	ToolGetStoreDepartments = "get_store_departments"
	ToolTransferToHuman     = "transfer_to_human"
)

// ToolResult is what an executor hands back to the dialogue layer. Result holds
// the wire object (one of the *Result types or Failure); Error is set only when
// the call itself was rejected before reaching a handler.
type ToolResult struct {
	Tool   string `json:"tool"`
	Result any    `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
}

// Payload returns the object the model sees for this call.
func (r ToolResult) Payload() any {
	if r.Error != "" {
		return Fail(r.Error)
	}
	return r.Result
}

// Failure is the wire shape of a recovered data error.
type Failure struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func Fail(message string) Failure {
	return Failure{Success: false, Error: message}
}

type InventoryResult struct {
	Success   bool   `json:"success"`
	ItemName  string `json:"item_name"`
	StoreName string `json:"store_name"`
	StoreID   string `json:"store_id"`
	InStock   bool   `json:"in_stock"`
	Quantity  int    `json:"quantity"`
	Price     string `json:"price"`
	Aisle     string `json:"aisle"`
}

type HoursResult struct {
	Success   bool   `json:"success"`
	StoreName string `json:"store_name"`
	Hours     any    `json:"hours"`
}

type DepartmentsResult struct {
	Success     bool     `json:"success"`
	StoreName   string   `json:"store_name"`
	Departments []string `json:"departments"`
}

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// ChatMessage is one transcript line of a call.
type ChatMessage struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
	Tool    string `json:"tool,omitempty"`
}

// TransferResult is returned once a supervisor has picked up. The session is
// shut down right after, so the model rarely sees it.
type TransferResult struct {
	Success            bool   `json:"success"`
	SupervisorIdentity string `json:"supervisor_identity,omitempty"`
}
