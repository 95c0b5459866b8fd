package access

// Resource names the record kinds the permission gate knows about
type Resource string

const (
	ResourceClient    Resource = "client"
	ResourceJob       Resource = "job"
	ResourceInvoice   Resource = "invoice"
	ResourceTimesheet Resource = "timesheet"
	ResourcePayroll   Resource = "payroll"
	ResourceReport    Resource = "report"
	ResourceEntity    Resource = "entity"
	ResourceUser      Resource = "user"
)

// Action names the operations the permission gate knows about
type Action string

const (
	ActionRead    Action = "read"
	ActionCreate  Action = "create"
	ActionUpdate  Action = "update"
	ActionDelete  Action = "delete"
	ActionApprove Action = "approve"
)

// capability is a (resource, action) pair
type capability struct {
	resource Resource
	action   Action
}

// entityUserCapabilities is the fixed capability table for RoleEntityUser.
// It is data, not code branches: read, create, and update on day-to-day
// records only. No delete on anything, no approve on anything, no access to
// payroll, entity settings, or user administration.
var entityUserCapabilities = map[capability]struct{}{
	{ResourceClient, ActionRead}:      {},
	{ResourceClient, ActionCreate}:    {},
	{ResourceClient, ActionUpdate}:    {},
	{ResourceJob, ActionRead}:         {},
	{ResourceJob, ActionCreate}:       {},
	{ResourceJob, ActionUpdate}:       {},
	{ResourceInvoice, ActionRead}:     {},
	{ResourceInvoice, ActionCreate}:   {},
	{ResourceInvoice, ActionUpdate}:   {},
	{ResourceTimesheet, ActionRead}:   {},
	{ResourceTimesheet, ActionCreate}: {},
	{ResourceTimesheet, ActionUpdate}: {},
	{ResourceReport, ActionRead}:      {},
}

// EntityUserCapabilities returns a copy of the fixed capability table,
// for exhaustive testing and for UI layers that render available actions.
func EntityUserCapabilities() map[Resource][]Action {
	out := make(map[Resource][]Action)
	for cap := range entityUserCapabilities {
		out[cap.resource] = append(out[cap.resource], cap.action)
	}
	return out
}
