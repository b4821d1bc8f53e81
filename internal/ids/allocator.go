// Package ids issues account numbers, transaction ids and reference numbers.
package ids

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
)

const (
	// BankCode prefixes every account number.
	BankCode = "1234"
	// AccountNumberLength is the full length including the bank code.
	AccountNumberLength = 12

	transactionPrefix = "TXN"
	referencePrefix   = "REF"
	referenceLayout   = "20060102150405"
)

var accountSuffixSpace = new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(AccountNumberLength-len(BankCode))), nil)

// Allocator generates identifiers. Transaction ids and reference numbers come
// from a snowflake node (millisecond clock, node id, per-node sequence), so two
// allocators with distinct node ids never collide. Uniqueness is still enforced
// by the store.
type Allocator struct {
	node *snowflake.Node
	now  func() time.Time
}

// New creates an allocator for a node id in [0, 1023].
func New(nodeID int64) (*Allocator, error) {
	node, err := snowflake.NewNode(nodeID)
	if err != nil {
		return nil, fmt.Errorf("failed to create id node %d: %w", nodeID, err)
	}
	return &Allocator{node: node, now: time.Now}, nil
}

// AccountNumber returns the bank code followed by random digits.
func (a *Allocator) AccountNumber() (string, error) {
	n, err := rand.Int(rand.Reader, accountSuffixSpace)
	if err != nil {
		return "", fmt.Errorf("failed to read randomness: %w", err)
	}
	return fmt.Sprintf("%s%0*d", BankCode, AccountNumberLength-len(BankCode), n), nil
}

func (a *Allocator) TransactionID() string {
	return transactionPrefix + strings.ToUpper(a.node.Generate().Base36())
}

// RefNo embeds the UTC wall clock for readability ahead of the snowflake id.
func (a *Allocator) RefNo() string {
	return referencePrefix + a.now().UTC().Format(referenceLayout) + strings.ToUpper(a.node.Generate().Base36())
}
