package services

import (
	portsrepo "github.com/SscSPs/banking_backoffice/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/banking_backoffice/internal/core/ports/services"
	"github.com/SscSPs/banking_backoffice/internal/platform/config"
	"github.com/SscSPs/banking_backoffice/internal/utils/banking"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider) *portssvc.ServiceContainer {
	generator := banking.NewGenerator(cfg.Bank.CountryCode, cfg.Bank.BankCode, cfg.Bank.BranchCode)

	return &portssvc.ServiceContainer{
		Account: NewAccountService(repos),
		Ledger:  NewLedgerService(repos, generator, cfg.Bank),
		User:    NewUserService(repos, generator, cfg.Bank),
		Token:   NewTokenService(cfg),
	}
}
