package api

import "github.com/shopspring/decimal"

// AuthService

type RegisterRequest struct {
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	Password    string `json:"password"`
}

type RegisterResponse struct {
	User      *User  `json:"user"`
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expiresAt"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	User      *User  `json:"user"`
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expiresAt"`
}

type GetCurrentUserRequest struct{}

type GetCurrentUserResponse struct {
	User *User `json:"user"`
}

// GroupService

type CreateGroupRequest struct {
	Name    string   `json:"name"`
	Members []string `json:"members"`
}

type CreateGroupResponse struct {
	Group *Group `json:"group"`
}

type GetGroupRequest struct {
	GroupID string `json:"groupId"`
}

type GetGroupResponse struct {
	Group *Group `json:"group"`
}

type ListGroupsRequest struct{}

type ListGroupsResponse struct {
	Groups []*Group `json:"groups"`
}

type AddGroupMembersRequest struct {
	GroupID string   `json:"groupId"`
	Members []string `json:"members"`
}

type AddGroupMembersResponse struct {
	Group *Group `json:"group"`
}

type DeleteGroupRequest struct {
	GroupID string `json:"groupId"`
}

type DeleteGroupResponse struct{}

// BalanceService

type GetGroupBalancesRequest struct {
	GroupID string `json:"groupId"`
}

type GetGroupBalancesResponse struct {
	Members            map[string]*MemberBalance `json:"members"`
	TotalGroupSpending decimal.Decimal           `json:"totalGroupSpending"`
	SuggestedTransfers []Transfer                `json:"suggestedTransfers"`
}

type GetSimplifiedBalancesRequest struct {
	GroupID string `json:"groupId"`
}

type GetSimplifiedBalancesResponse struct {
	YouOwe  []Counterparty `json:"youOwe"`
	OwesYou []Counterparty `json:"owesYou"`
}

// TransactionService

type CreateTransactionRequest struct {
	Type          string                     `json:"type"`
	Amount        decimal.Decimal            `json:"amount"`
	Category      string                     `json:"category,omitempty"`
	Description   string                     `json:"description,omitempty"`
	Date          int64                      `json:"date,omitempty"`
	Context       TransactionContext         `json:"context"`
	PayerID       string                     `json:"payerId,omitempty"`
	Participants  []string                   `json:"participants,omitempty"`
	SplitType     string                     `json:"splitType,omitempty"`
	CustomAmounts map[string]decimal.Decimal `json:"customAmounts,omitempty"`
	BankAccountID string                     `json:"bankAccountId,omitempty"`
}

type CreateTransactionResponse struct {
	Transaction  *Transaction  `json:"transaction"`
	SoftFailures []SoftFailure `json:"softFailures,omitempty"`
}

type GetTransactionRequest struct {
	TransactionID string `json:"transactionId"`
}

type GetTransactionResponse struct {
	Transaction *Transaction `json:"transaction"`
}

type ListTransactionsRequest struct {
	GroupID string `json:"groupId,omitempty"`
}

type ListTransactionsResponse struct {
	Transactions []*Transaction `json:"transactions"`
}

// UpdateTransactionRequest changes only the fields that are set.
type UpdateTransactionRequest struct {
	TransactionID string                     `json:"transactionId"`
	Description   *string                    `json:"description,omitempty"`
	Category      *string                    `json:"category,omitempty"`
	Amount        *decimal.Decimal           `json:"amount,omitempty"`
	CustomAmounts map[string]decimal.Decimal `json:"customAmounts,omitempty"`
}

type UpdateTransactionResponse struct {
	Transaction *Transaction `json:"transaction"`
}

type DeleteTransactionRequest struct {
	TransactionID string `json:"transactionId"`
}

type DeleteTransactionResponse struct{}

// SettlementService

type InitiateSettlementRequest struct {
	GroupID    string `json:"groupId"`
	DebtorID   string `json:"debtorId"`
	CreditorID string `json:"creditorId"`
}

type InitiateSettlementResponse struct {
	Settlements []Settlement `json:"settlements"`
}

type RespondToSettlementRequest struct {
	GroupID    string `json:"groupId"`
	DebtorID   string `json:"debtorId"`
	CreditorID string `json:"creditorId"`
	Confirmed  bool   `json:"confirmed"`
	Reason     string `json:"reason,omitempty"`
}

type RespondToSettlementResponse struct {
	Settlements []Settlement `json:"settlements"`
}

type ResetRejectedSettlementsRequest struct {
	GroupID    string `json:"groupId"`
	DebtorID   string `json:"debtorId"`
	CreditorID string `json:"creditorId"`
}

type ResetRejectedSettlementsResponse struct {
	Settlements []Settlement `json:"settlements"`
}

type GetSettlementHistoryRequest struct {
	TransactionID string `json:"transactionId"`
}

type GetSettlementHistoryResponse struct {
	Settlements []Settlement `json:"settlements"`
}

// BankAccountService

type CreateBankAccountRequest struct {
	Name           string          `json:"name"`
	OpeningBalance decimal.Decimal `json:"openingBalance"`
	IsPrimary      bool            `json:"isPrimary"`
}

type CreateBankAccountResponse struct {
	Account *BankAccount `json:"account"`
}

type ListBankAccountsRequest struct{}

type ListBankAccountsResponse struct {
	Accounts []*BankAccount `json:"accounts"`
}

type SetPrimaryBankAccountRequest struct {
	AccountID string `json:"accountId"`
}

type SetPrimaryBankAccountResponse struct {
	Account *BankAccount `json:"account"`
}
