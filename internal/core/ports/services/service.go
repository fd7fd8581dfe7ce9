package services

// ServiceContainer bundles the services the HTTP layer is wired against.
type ServiceContainer struct {
	Account AccountSvcFacade
	Ledger  LedgerSvcFacade
	User    UserSvcFacade
	Token   TokenSvcFacade
}
