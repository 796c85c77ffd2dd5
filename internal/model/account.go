package model

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// AccountIDLength is the size in bytes of an AccountID.
const AccountIDLength = 32

// An AccountID is the opaque identity of the account owning an evidence.
// It is rendered as a 0x-prefixed hex string.
type AccountID [AccountIDLength]byte

// String implements fmt.Stringer.
func (a AccountID) String() string {
	return hexutil.Encode(a[:])
}

// IsZero returns true when no account is set.
func (a AccountID) IsZero() bool {
	return a == AccountID{}
}

// MarshalText implements encoding.TextMarshaler.
func (a AccountID) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *AccountID) UnmarshalText(text []byte) error {
	b, err := hexutil.Decode(string(text))
	if err != nil {
		return fmt.Errorf("invalid account id: %w", err)
	}
	if len(b) != AccountIDLength {
		return fmt.Errorf("invalid account id: expected %d bytes, got %d", AccountIDLength, len(b))
	}
	copy(a[:], b)
	return nil
}

// ParseAccountID parses the hex representation of an account.
func ParseAccountID(s string) (AccountID, error) {
	var a AccountID
	err := a.UnmarshalText([]byte(s))
	return a, err
}
