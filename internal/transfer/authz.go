package transfer

import (
	"github.com/taka-pay/taka_pay/internal/account"
	"github.com/taka-pay/taka_pay/internal/ledger"
)

type flow struct {
	payer account.Role
	payee account.Role
	kind  ledger.Kind
}

// Matrix is the role authorization table. A transfer is modeled as a directed
// fund flow from payer to payee, independent of which party called the API.
type Matrix struct {
	allowed map[flow]struct{}
}

// NewMatrix returns an empty matrix.
func NewMatrix() Matrix {
	return Matrix{allowed: make(map[flow]struct{})}
}

// DefaultMatrix encodes the observed domain rules: customers send to
// customers, customers cash out to agents, agents cash in to customers.
func DefaultMatrix() Matrix {
	m := NewMatrix()
	m.Allow(account.RoleCustomer, account.RoleCustomer, ledger.KindSend)
	m.Allow(account.RoleCustomer, account.RoleAgent, ledger.KindCashOut)
	m.Allow(account.RoleAgent, account.RoleCustomer, ledger.KindCashIn)
	return m
}

// Allow permits a (payer role, payee role, kind) combination.
func (m Matrix) Allow(payer, payee account.Role, kind ledger.Kind) {
	m.allowed[flow{payer: payer, payee: payee, kind: kind}] = struct{}{}
}

// Allowed reports whether the combination is permitted.
func (m Matrix) Allowed(payer, payee account.Role, kind ledger.Kind) bool {
	_, ok := m.allowed[flow{payer: payer, payee: payee, kind: kind}]
	return ok
}
