package constants

// FieldType names the universal and type-specific field classes the engine
// emits. Stable values (serialized in results and stored in DB).
type FieldType string

const (
	FieldEmail         FieldType = "email"
	FieldPhone         FieldType = "phone"
	FieldDate          FieldType = "date"
	FieldCurrency      FieldType = "currency"
	FieldInvoiceNumber FieldType = "invoice_number"
	FieldURL           FieldType = "url"
	FieldPersonName    FieldType = "person_name"
	FieldCompanyName   FieldType = "company_name"
	FieldAddress       FieldType = "address"
	FieldSkill         FieldType = "skill"
	FieldJobTitle      FieldType = "job_title"
	FieldText          FieldType = "text"
	FieldNumber        FieldType = "number"
	FieldTime          FieldType = "time"
)

// FieldSource records which extraction mechanism produced a field.
type FieldSource string

const (
	SourcePattern   FieldSource = "pattern"
	SourceEntity    FieldSource = "entity"
	SourceHeuristic FieldSource = "heuristic"
	SourceDefault   FieldSource = "default"
	SourceManual    FieldSource = "manual"
)
