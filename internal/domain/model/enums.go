package model

// FormMode distinguishes creating a new item from editing a loaded one.
type FormMode string

const (
	FormModeNew  FormMode = "new"
	FormModeEdit FormMode = "edit"
)

// Backend names the document store implementation behind the gateway.
type Backend string

const (
	BackendMongo  Backend = "mongo"
	BackendSQLite Backend = "sqlite"
)
