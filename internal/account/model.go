package account

import "time"

// Role classifies what an account is allowed to do with money.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleAgent    Role = "agent"
	RoleAdmin    Role = "admin"
)

// Status tracks the lifecycle of an account. Only approved accounts may send funds.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusBlocked  Status = "blocked"
)

// Account is a stored-value account in the ledger. Balance is an integer
// amount in minor currency units and is mutated only by the transfer engine.
type Account struct {
	ID        string
	Role      Role
	Status    Status
	Balance   int64
	PinHash   string
	CreatedAt time.Time
}

// ProvisionPolicy captures the opening-balance rules applied when the external
// registration collaborator creates accounts.
type ProvisionPolicy struct {
	AgentInitialBalance    int64
	CustomerInitialBalance int64
	ApprovalBonus          int64
}

// DefaultProvisionPolicy mirrors the production policy: agents start funded,
// customers start at zero and receive a small bonus on approval.
func DefaultProvisionPolicy() ProvisionPolicy {
	return ProvisionPolicy{
		AgentInitialBalance:    10_000,
		CustomerInitialBalance: 0,
		ApprovalBonus:          40,
	}
}

// InitialBalance returns the opening balance for a freshly registered account.
func (p ProvisionPolicy) InitialBalance(role Role) int64 {
	if role == RoleAgent {
		return p.AgentInitialBalance
	}
	return p.CustomerInitialBalance
}
