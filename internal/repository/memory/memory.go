package memory

import (
	"bank_ledger/internal/repository"
)

var (
	_ repository.AccountRepository     = (*AccountRepository)(nil)
	_ repository.UserRepository        = (*UserRepository)(nil)
	_ repository.TransactionRepository = (*TransactionRepository)(nil)
	_ repository.CurrencyRepository    = (*CurrencyRepository)(nil)
	_ repository.Ledger                = (*Ledger)(nil)
)
