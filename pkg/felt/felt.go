package felt

import (
	"crypto/rand"
	"encoding/json"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/crypto"
)

// Felt is a ledger field element. Values cross the wire as hex strings and
// never lose precision; arithmetic beyond hashing is out of scope.
type Felt struct {
	value big.Int
}

// selectorMask truncates a Keccak digest to 250 bits, the field's usable
// range for selectors and derived addresses.
var selectorMask = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 250), big.NewInt(1))

// addressPrefix seeds the deterministic contract address derivation.
var addressPrefix = []byte("STARKNET_CONTRACT_ADDRESS")

// New creates a felt from a uint64.
func New(v uint64) Felt {
	var f Felt
	f.value.SetUint64(v)
	return f
}

// FromBig creates a felt from a big.Int. The input is copied; negative
// values are rejected.
func FromBig(b *big.Int) (Felt, error) {
	if b == nil {
		return Felt{}, fmt.Errorf("nil big.Int")
	}
	if b.Sign() < 0 {
		return Felt{}, fmt.Errorf("field element cannot be negative: %s", b)
	}
	var f Felt
	f.value.Set(b)
	return f, nil
}

// FromString parses a felt from a hex ("0x...") or decimal string.
func FromString(s string) (Felt, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Felt{}, fmt.Errorf("empty field element")
	}

	base := 10
	digits := s
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		base = 16
		digits = s[2:]
		if digits == "" {
			return Felt{}, fmt.Errorf("invalid field element %q", s)
		}
	}

	var f Felt
	if _, ok := f.value.SetString(digits, base); !ok {
		return Felt{}, fmt.Errorf("invalid field element %q", s)
	}
	if f.value.Sign() < 0 {
		return Felt{}, fmt.Errorf("field element cannot be negative: %s", s)
	}
	return f, nil
}

// MustFromString parses a felt and panics on failure. For constants and tests.
func MustFromString(s string) Felt {
	f, err := FromString(s)
	if err != nil {
		panic(err)
	}
	return f
}

// Random returns a cryptographically random 250-bit felt, used for
// contract address salts when the caller supplies none.
func Random() (Felt, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return Felt{}, fmt.Errorf("failed to generate random felt: %w", err)
	}

	var f Felt
	f.value.SetBytes(buf)
	f.value.And(&f.value, selectorMask)
	return f, nil
}

// Big returns a copy of the underlying integer.
func (f Felt) Big() *big.Int {
	return new(big.Int).Set(&f.value)
}

// Hex returns the canonical lowercase 0x-prefixed representation.
func (f Felt) Hex() string {
	return "0x" + f.value.Text(16)
}

// String implements fmt.Stringer.
func (f Felt) String() string {
	return f.Hex()
}

// Equal reports whether two felts hold the same value.
func (f Felt) Equal(other Felt) bool {
	return f.value.Cmp(&other.value) == 0
}

// IsZero reports whether the felt is zero.
func (f Felt) IsZero() bool {
	return f.value.Sign() == 0
}

// Bytes32 returns the value as a 32-byte big-endian word, the unit the
// hashing helpers consume.
func (f Felt) Bytes32() [32]byte {
	var out [32]byte
	f.value.FillBytes(out[:])
	return out
}

// MarshalJSON encodes the felt as its hex string.
func (f Felt) MarshalJSON() ([]byte, error) {
	return json.Marshal(f.Hex())
}

// UnmarshalJSON decodes a felt from a hex or decimal JSON string.
func (f *Felt) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("field element must be a JSON string: %w", err)
	}
	parsed, err := FromString(s)
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

// SelectorFromName computes the entrypoint selector for a function name:
// the Keccak256 digest truncated to 250 bits.
func SelectorFromName(name string) Felt {
	digest := crypto.Keccak256([]byte(name))

	var f Felt
	f.value.SetBytes(digest)
	f.value.And(&f.value, selectorMask)
	return f
}

// HashBytes computes the 250-bit truncated Keccak digest of arbitrary
// bytes. Used for contract class hashes over the serialized definition.
func HashBytes(data []byte) Felt {
	digest := crypto.Keccak256(data)

	var f Felt
	f.value.SetBytes(digest)
	f.value.And(&f.value, selectorMask)
	return f
}

// HashElements chains the hash over a sequence of felts, binding the
// element count so sequences with shifted boundaries cannot collide.
func HashElements(elements []Felt) Felt {
	buf := make([]byte, 0, 32*(len(elements)+1))
	for _, e := range elements {
		word := e.Bytes32()
		buf = append(buf, word[:]...)
	}
	length := New(uint64(len(elements))).Bytes32()
	buf = append(buf, length[:]...)
	return HashBytes(buf)
}

// ComputeContractAddress derives the address a deploy transaction with the
// given class hash, salt and constructor calldata settles at. Pure
// function of its inputs: the caller can predict the address before the
// transaction confirms.
func ComputeContractAddress(classHash, salt Felt, constructorCalldata []Felt) Felt {
	calldataHash := HashElements(constructorCalldata)

	classWord := classHash.Bytes32()
	saltWord := salt.Bytes32()
	calldataWord := calldataHash.Bytes32()

	buf := make([]byte, 0, len(addressPrefix)+3*32)
	buf = append(buf, addressPrefix...)
	buf = append(buf, classWord[:]...)
	buf = append(buf, saltWord[:]...)
	buf = append(buf, calldataWord[:]...)

	return HashBytes(buf)
}
