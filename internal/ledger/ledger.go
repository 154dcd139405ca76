// Package ledger keeps the household's per-year account book: balances carried
// forward year to year, categorized deposits and withdrawals, and the
// availability snapshots the planning core consumes.
package ledger

import (
	"errors"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/drawplan/withdrawal-planner/internal/domain"
	"github.com/drawplan/withdrawal-planner/pkg/money"
)

// Category labels the purpose of a ledger entry.
type Category string

const (
	CategoryContribution Category = "contribution"
	CategoryGrowth       Category = "growth"
	CategoryDrawdown     Category = "drawdown"
	CategoryRollover     Category = "rollover"
)

var (
	ErrUnknownAccount    = errors.New("ledger: unknown account")
	ErrUnknownYear       = errors.New("ledger: year not opened")
	ErrNegativeAmount    = errors.New("ledger: negative amount")
	ErrInsufficientFunds = errors.New("ledger: insufficient funds")
)

type entry struct {
	amount   decimal.Decimal
	category Category
}

// yearRecord tracks one account for one year. balance is the running balance
// as entries post within the year.
type yearRecord struct {
	starting    decimal.Decimal
	balance     decimal.Decimal
	deposits    []entry
	withdrawals []entry
}

// Ledger is the in-memory account book. Amounts are rounded to cents at
// posting; balances therefore stay at cent precision.
type Ledger struct {
	openingYear int
	currentYear int
	accounts    map[domain.AccountKind]map[int]*yearRecord
}

// NewLedger opens the book at openingYear with the given opening balances.
// Every ledger account exists from the start; accounts without an opening
// balance start at zero.
func NewLedger(opening map[domain.AccountKind]decimal.Decimal, openingYear int) *Ledger {
	l := &Ledger{
		openingYear: openingYear,
		currentYear: openingYear,
		accounts:    make(map[domain.AccountKind]map[int]*yearRecord),
	}
	for _, kind := range domain.LedgerAccounts() {
		balance := money.RoundCents(opening[kind])
		l.accounts[kind] = map[int]*yearRecord{
			openingYear: {starting: balance, balance: balance},
		}
	}
	return l
}

// OpeningYear returns the first year of the book.
func (l *Ledger) OpeningYear() int { return l.openingYear }

// CurrentYear returns the most recently opened year.
func (l *Ledger) CurrentYear() int { return l.currentYear }

// BeginYear opens a new year, carrying every account's balance forward.
func (l *Ledger) BeginYear(year int) error {
	if year <= l.currentYear {
		return fmt.Errorf("ledger: year %d already opened (current year %d)", year, l.currentYear)
	}
	for _, years := range l.accounts {
		prev := years[l.currentYear]
		years[year] = &yearRecord{starting: prev.balance, balance: prev.balance}
	}
	l.currentYear = year
	return nil
}

func (l *Ledger) record(account domain.AccountKind, year int) (*yearRecord, error) {
	years, ok := l.accounts[account]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownAccount, account)
	}
	rec, ok := years[year]
	if !ok {
		return nil, fmt.Errorf("%w: account %q year %d", ErrUnknownYear, account, year)
	}
	return rec, nil
}

// Deposit posts a deposit to an account. Zero amounts are dropped silently.
func (l *Ledger) Deposit(account domain.AccountKind, year int, amount decimal.Decimal, category Category) error {
	if amount.IsNegative() {
		return fmt.Errorf("%w: deposit of %s to %q", ErrNegativeAmount, amount, account)
	}
	rec, err := l.record(account, year)
	if err != nil {
		return err
	}
	rounded := money.RoundCents(amount)
	if rounded.IsZero() {
		return nil
	}
	rec.balance = rec.balance.Add(rounded)
	rec.deposits = append(rec.deposits, entry{amount: rounded, category: category})
	return nil
}

// Withdraw posts a withdrawal. The running balance may never go negative.
func (l *Ledger) Withdraw(account domain.AccountKind, year int, amount decimal.Decimal, category Category) error {
	if amount.IsNegative() {
		return fmt.Errorf("%w: withdrawal of %s from %q", ErrNegativeAmount, amount, account)
	}
	rec, err := l.record(account, year)
	if err != nil {
		return err
	}
	rounded := money.RoundCents(amount)
	if rounded.IsZero() {
		return nil
	}
	if rounded.GreaterThan(rec.balance) {
		return fmt.Errorf("%w: %s exceeds balance %s on %q in %d",
			ErrInsufficientFunds, rounded, rec.balance, account, year)
	}
	rec.balance = rec.balance.Sub(rounded)
	rec.withdrawals = append(rec.withdrawals, entry{amount: rounded, category: category})
	return nil
}

// Transfer moves funds between two accounts within a year.
func (l *Ledger) Transfer(from, to domain.AccountKind, year int, amount decimal.Decimal, category Category) error {
	if _, err := l.record(to, year); err != nil {
		return err
	}
	if err := l.Withdraw(from, year, amount, category); err != nil {
		return err
	}
	return l.Deposit(to, year, amount, category)
}

// ApplyGrowth deposits one year's return on the account's current balance.
func (l *Ledger) ApplyGrowth(account domain.AccountKind, year int, rate decimal.Decimal) error {
	rec, err := l.record(account, year)
	if err != nil {
		return err
	}
	growth := rec.balance.Mul(rate)
	if growth.IsNegative() {
		// Negative rates shrink the balance without the withdrawal guard.
		rounded := money.RoundCents(growth.Neg())
		if rounded.GreaterThan(rec.balance) {
			rounded = rec.balance
		}
		rec.balance = rec.balance.Sub(rounded)
		rec.withdrawals = append(rec.withdrawals, entry{amount: rounded, category: CategoryGrowth})
		return nil
	}
	return l.Deposit(account, year, growth, CategoryGrowth)
}

// StartingBalance returns the account balance at the start of the year.
func (l *Ledger) StartingBalance(account domain.AccountKind, year int) (decimal.Decimal, error) {
	rec, err := l.record(account, year)
	if err != nil {
		return decimal.Zero, err
	}
	return rec.starting, nil
}

// EndingBalance returns the running balance for the year so far. Once a year
// is fully posted it is that year's closing balance.
func (l *Ledger) EndingBalance(account domain.AccountKind, year int) (decimal.Decimal, error) {
	rec, err := l.record(account, year)
	if err != nil {
		return decimal.Zero, err
	}
	return rec.balance, nil
}

// Deposits returns the year's total deposits for the account.
func (l *Ledger) Deposits(account domain.AccountKind, year int) (decimal.Decimal, error) {
	rec, err := l.record(account, year)
	if err != nil {
		return decimal.Zero, err
	}
	return sumEntries(rec.deposits, ""), nil
}

// Withdrawals returns the year's total withdrawals for the account.
func (l *Ledger) Withdrawals(account domain.AccountKind, year int) (decimal.Decimal, error) {
	rec, err := l.record(account, year)
	if err != nil {
		return decimal.Zero, err
	}
	return sumEntries(rec.withdrawals, ""), nil
}

// DepositsByCategory returns the year's deposits with the given category.
func (l *Ledger) DepositsByCategory(account domain.AccountKind, year int, category Category) (decimal.Decimal, error) {
	rec, err := l.record(account, year)
	if err != nil {
		return decimal.Zero, err
	}
	return sumEntries(rec.deposits, category), nil
}

// WithdrawalsByCategory returns the year's withdrawals with the given category.
func (l *Ledger) WithdrawalsByCategory(account domain.AccountKind, year int, category Category) (decimal.Decimal, error) {
	rec, err := l.record(account, year)
	if err != nil {
		return decimal.Zero, err
	}
	return sumEntries(rec.withdrawals, category), nil
}

// Snapshot returns the availability snapshot for one account and year.
func (l *Ledger) Snapshot(account domain.AccountKind, year int) (*domain.AccountActivity, error) {
	rec, err := l.record(account, year)
	if err != nil {
		return nil, err
	}
	return &domain.AccountActivity{
		Account:          account,
		Year:             year,
		StartingBalance:  rec.starting,
		EndingBalance:    rec.balance,
		TotalDeposits:    sumEntries(rec.deposits, ""),
		TotalWithdrawals: sumEntries(rec.withdrawals, ""),
	}, nil
}

// EndingBalances returns every account's running balance for the year.
func (l *Ledger) EndingBalances(year int) (map[domain.AccountKind]decimal.Decimal, error) {
	balances := make(map[domain.AccountKind]decimal.Decimal, len(l.accounts))
	for _, kind := range l.Accounts() {
		balance, err := l.EndingBalance(kind, year)
		if err != nil {
			return nil, err
		}
		balances[kind] = balance
	}
	return balances, nil
}

// NetWorth returns the sum of every account's running balance for the year.
func (l *Ledger) NetWorth(year int) (decimal.Decimal, error) {
	balances, err := l.EndingBalances(year)
	if err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for _, balance := range balances {
		total = total.Add(balance)
	}
	return total, nil
}

// Accounts lists the ledger accounts in a stable order.
func (l *Ledger) Accounts() []domain.AccountKind {
	kinds := make([]domain.AccountKind, 0, len(l.accounts))
	for kind := range l.accounts {
		kinds = append(kinds, kind)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

func sumEntries(entries []entry, category Category) decimal.Decimal {
	total := decimal.Zero
	for _, e := range entries {
		if category != "" && e.category != category {
			continue
		}
		total = total.Add(e.amount)
	}
	return total
}
