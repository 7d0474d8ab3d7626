package memory

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/baharkarakas/maverick-bank/internal/models"
	repo "github.com/baharkarakas/maverick-bank/internal/repository"
	"github.com/shopspring/decimal"
)

// errRestrict mirrors an ON DELETE RESTRICT violation.
var errRestrict = errors.New("memory: row is still referenced")

type usersRepo struct{ v *view }

func (r *usersRepo) Create(_ context.Context, u models.User) (models.User, error) {
	st, done, err := r.v.write("users.Create")
	if err != nil {
		return models.User{}, err
	}
	defer done()
	for _, existing := range st.users {
		if existing.Username == u.Username {
			return models.User{}, fmt.Errorf("%w: username %q", repo.ErrDuplicate, u.Username)
		}
	}
	u.ID = st.next("users")
	u.CreatedAt = time.Now().UTC()
	st.users[u.ID] = u
	return u, nil
}

func (r *usersRepo) GetByID(_ context.Context, id int64) (models.User, error) {
	st, done, err := r.v.read("users.GetByID")
	if err != nil {
		return models.User{}, err
	}
	defer done()
	u, ok := st.users[id]
	if !ok {
		return models.User{}, repo.ErrNotFound
	}
	return u, nil
}

func (r *usersRepo) GetByUsername(_ context.Context, username string) (models.User, error) {
	st, done, err := r.v.read("users.GetByUsername")
	if err != nil {
		return models.User{}, err
	}
	defer done()
	for _, u := range st.users {
		if u.Username == username {
			return u, nil
		}
	}
	return models.User{}, repo.ErrNotFound
}

func (r *usersRepo) Delete(_ context.Context, id int64) error {
	st, done, err := r.v.write("users.Delete")
	if err != nil {
		return err
	}
	defer done()
	if _, ok := st.users[id]; !ok {
		return repo.ErrNotFound
	}
	for _, c := range st.customers {
		if c.UserID == id {
			return errRestrict
		}
	}
	delete(st.users, id)
	return nil
}

type customersRepo struct{ v *view }

func (r *customersRepo) Create(_ context.Context, c models.Customer) (models.Customer, error) {
	st, done, err := r.v.write("customers.Create")
	if err != nil {
		return models.Customer{}, err
	}
	defer done()
	if _, ok := st.users[c.UserID]; !ok {
		return models.Customer{}, errRestrict
	}
	for _, existing := range st.customers {
		if existing.UserID == c.UserID {
			return models.Customer{}, fmt.Errorf("%w: customer for user %d", repo.ErrDuplicate, c.UserID)
		}
	}
	c.ID = st.next("customers")
	c.CreatedAt = time.Now().UTC()
	st.customers[c.ID] = c
	return c, nil
}

func (r *customersRepo) GetByID(_ context.Context, id int64) (models.Customer, error) {
	st, done, err := r.v.read("customers.GetByID")
	if err != nil {
		return models.Customer{}, err
	}
	defer done()
	c, ok := st.customers[id]
	if !ok {
		return models.Customer{}, repo.ErrNotFound
	}
	return c, nil
}

func (r *customersRepo) GetByUserID(_ context.Context, userID int64) (models.Customer, error) {
	st, done, err := r.v.read("customers.GetByUserID")
	if err != nil {
		return models.Customer{}, err
	}
	defer done()
	for _, c := range st.customers {
		if c.UserID == userID {
			return c, nil
		}
	}
	return models.Customer{}, repo.ErrNotFound
}

func (r *customersRepo) Delete(_ context.Context, id int64) error {
	st, done, err := r.v.write("customers.Delete")
	if err != nil {
		return err
	}
	defer done()
	if _, ok := st.customers[id]; !ok {
		return repo.ErrNotFound
	}
	for _, a := range st.accounts {
		if a.CustomerID == id {
			return errRestrict
		}
	}
	for _, t := range st.transactions {
		if t.CustomerID != nil && *t.CustomerID == id {
			return errRestrict
		}
	}
	delete(st.customers, id)
	return nil
}

type accountsRepo struct{ v *view }

func (r *accountsRepo) Create(_ context.Context, a models.Account) (models.Account, error) {
	st, done, err := r.v.write("accounts.Create")
	if err != nil {
		return models.Account{}, err
	}
	defer done()
	if _, ok := st.customers[a.CustomerID]; !ok {
		return models.Account{}, errRestrict
	}
	if !slices.ContainsFunc(st.accountTypes, func(at models.AccountType) bool { return at.ID == a.AccountTypeID }) {
		return models.Account{}, errRestrict
	}
	for _, existing := range st.accounts {
		if existing.AccountNumber == a.AccountNumber {
			return models.Account{}, fmt.Errorf("%w: account number %q", repo.ErrDuplicate, a.AccountNumber)
		}
	}
	a.ID = st.next("accounts")
	a.CreatedAt = time.Now().UTC()
	st.accounts[a.ID] = a
	return a, nil
}

func (r *accountsRepo) GetByNumber(_ context.Context, number string) (models.Account, error) {
	st, done, err := r.v.read("accounts.GetByNumber")
	if err != nil {
		return models.Account{}, err
	}
	defer done()
	for _, a := range st.accounts {
		if a.AccountNumber == number {
			return a, nil
		}
	}
	return models.Account{}, repo.ErrNotFound
}

func (r *accountsRepo) GetByID(_ context.Context, id int64) (models.Account, error) {
	st, done, err := r.v.read("accounts.GetByID")
	if err != nil {
		return models.Account{}, err
	}
	defer done()
	a, ok := st.accounts[id]
	if !ok {
		return models.Account{}, repo.ErrNotFound
	}
	return a, nil
}

func (r *accountsRepo) ListByCustomer(_ context.Context, customerID int64) ([]models.Account, error) {
	st, done, err := r.v.read("accounts.ListByCustomer")
	if err != nil {
		return nil, err
	}
	defer done()
	out := []models.Account{}
	for _, a := range st.accounts {
		if a.CustomerID == customerID {
			out = append(out, a)
		}
	}
	slices.SortFunc(out, func(a, b models.Account) int { return cmp.Compare(a.ID, b.ID) })
	return out, nil
}

func (r *accountsRepo) UpdateBalance(_ context.Context, id int64, balance decimal.Decimal) error {
	st, done, err := r.v.write("accounts.UpdateBalance")
	if err != nil {
		return err
	}
	defer done()
	a, ok := st.accounts[id]
	if !ok {
		return repo.ErrNotFound
	}
	if balance.Abs().GreaterThan(models.MaxMoney) {
		return repo.ErrOutOfRange
	}
	a.Balance = balance
	st.accounts[id] = a
	return nil
}

func (r *accountsRepo) DeleteByCustomer(_ context.Context, customerID int64) (int64, error) {
	st, done, err := r.v.write("accounts.DeleteByCustomer")
	if err != nil {
		return 0, err
	}
	defer done()
	var ids []int64
	for id, a := range st.accounts {
		if a.CustomerID == customerID {
			ids = append(ids, id)
		}
	}
	for _, t := range st.transactions {
		for _, id := range ids {
			if (t.SourceAccountID != nil && *t.SourceAccountID == id) ||
				(t.DestinationAccountID != nil && *t.DestinationAccountID == id) {
				return 0, errRestrict
			}
		}
	}
	for _, id := range ids {
		delete(st.accounts, id)
	}
	return int64(len(ids)), nil
}

type transactionsRepo struct{ v *view }

func (r *transactionsRepo) Create(_ context.Context, t models.Transaction) (models.Transaction, error) {
	st, done, err := r.v.write("transactions.Create")
	if err != nil {
		return models.Transaction{}, err
	}
	defer done()
	if !t.Amount.IsPositive() {
		return models.Transaction{}, errors.New("memory: amount must be positive")
	}
	if t.Amount.GreaterThan(models.MaxMoney) {
		return models.Transaction{}, repo.ErrOutOfRange
	}
	for _, id := range []*int64{t.SourceAccountID, t.DestinationAccountID} {
		if id != nil {
			if _, ok := st.accounts[*id]; !ok {
				return models.Transaction{}, errRestrict
			}
		}
	}
	t.ID = st.next("transactions")
	t.SourceAccountNumber, t.DestinationAccountNumber, t.KindName = nil, nil, ""
	st.transactions = append(st.transactions, t)
	return t, nil
}

func (r *transactionsRepo) GetByID(_ context.Context, id int64) (models.Transaction, error) {
	st, done, err := r.v.read("transactions.GetByID")
	if err != nil {
		return models.Transaction{}, err
	}
	defer done()
	for _, t := range st.transactions {
		if t.ID == id {
			return resolve(st, t), nil
		}
	}
	return models.Transaction{}, repo.ErrNotFound
}

func (r *transactionsRepo) List(_ context.Context, f models.TransactionFilter) ([]models.Transaction, error) {
	st, done, err := r.v.read("transactions.List")
	if err != nil {
		return nil, err
	}
	defer done()
	out := []models.Transaction{}
	for _, t := range st.transactions {
		if f.Match(t) {
			out = append(out, resolve(st, t))
		}
	}
	slices.SortStableFunc(out, func(a, b models.Transaction) int {
		if c := a.TransactionDate.Compare(b.TransactionDate); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out, nil
}

func (r *transactionsRepo) CountByCustomer(_ context.Context, customerID int64) (int64, error) {
	st, done, err := r.v.read("transactions.CountByCustomer")
	if err != nil {
		return 0, err
	}
	defer done()
	owned := func(id *int64) bool {
		if id == nil {
			return false
		}
		a, ok := st.accounts[*id]
		return ok && a.CustomerID == customerID
	}
	var n int64
	for _, t := range st.transactions {
		if (t.CustomerID != nil && *t.CustomerID == customerID) || owned(t.SourceAccountID) || owned(t.DestinationAccountID) {
			n++
		}
	}
	return n, nil
}

// resolve fills the display names the SQL implementation gets from joins.
func resolve(st *state, t models.Transaction) models.Transaction {
	if t.SourceAccountID != nil {
		if a, ok := st.accounts[*t.SourceAccountID]; ok {
			n := a.AccountNumber
			t.SourceAccountNumber = &n
		}
	}
	if t.DestinationAccountID != nil {
		if a, ok := st.accounts[*t.DestinationAccountID]; ok {
			n := a.AccountNumber
			t.DestinationAccountNumber = &n
		}
	}
	for _, tt := range st.txTypes {
		if tt.ID == t.Kind {
			t.KindName = tt.Name
		}
	}
	return t
}

type lookupsRepo struct{ v *view }

func (r *lookupsRepo) TransactionTypes(context.Context) ([]models.TransactionType, error) {
	st, done, err := r.v.read("lookups.TransactionTypes")
	if err != nil {
		return nil, err
	}
	defer done()
	return slices.Clone(st.txTypes), nil
}

func (r *lookupsRepo) AccountTypes(context.Context) ([]models.AccountType, error) {
	st, done, err := r.v.read("lookups.AccountTypes")
	if err != nil {
		return nil, err
	}
	defer done()
	return slices.Clone(st.accountTypes), nil
}

type auditLogsRepo struct{ v *view }

func (r *auditLogsRepo) Create(_ context.Context, l models.AuditLog) error {
	st, done, err := r.v.write("audit_logs.Create")
	if err != nil {
		return err
	}
	defer done()
	l.ID = st.next("audit_logs")
	l.CreatedAt = time.Now().UTC()
	st.audit = append(st.audit, l)
	return nil
}
