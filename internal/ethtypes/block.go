package ethtypes

// Withdrawal represents a validator withdrawal credited by the beacon chain
// (EIP-4895). It is part of a block body from Shanghai onward.
type Withdrawal struct {
	Index          uint64
	ValidatorIndex uint64
	Address        Address
	Amount         uint64 // in Gwei
}

// MaxWithdrawalsPerPayload is the maximum number of withdrawals in a single
// execution payload. Nothing checks payloads or blocks against it:
// ValidateWithdrawal and the block stores accept any number of withdrawals.
const MaxWithdrawalsPerPayload = 16

// Header holds the subset of block header fields the Engine API core needs
// to reason about: identity, lineage, and timestamp. Full header validation
// belongs to the block execution pipeline, not to this package.
type Header struct {
	ParentHash Hash
	Number     uint64
	Timestamp  uint64
	Hash       Hash
}

// Body is the transaction/ommer/withdrawal payload of a block, projected
// into the shape the History Service hands back to the consensus layer.
type Body struct {
	Transactions [][]byte
	Ommers       []*Header
	Withdrawals  []*Withdrawal // nil pre-Shanghai, non-nil (possibly empty) from Shanghai onward
}

// Block pairs a Header with its Body. It is the unit stored and retrieved
// by the block provider collaborator.
type Block struct {
	Header *Header
	Body   *Body
}

// BlockID identifies a block either by number or by hash. Exactly one field
// is meaningful per lookup; the block provider documents which it expects.
type BlockID struct {
	Number *uint64
	Hash   *Hash
}

// ByNumber builds a BlockID selecting a block by number.
func ByNumber(n uint64) BlockID { return BlockID{Number: &n} }

// ByHash builds a BlockID selecting a block by hash.
func ByHash(h Hash) BlockID { return BlockID{Hash: &h} }
