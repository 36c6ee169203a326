package confidential

// Outpoint identifies the previous output an input spends.
type Outpoint struct {
	Hash  [32]byte
	Index uint32
}

// Bytes returns the outpoint in the canonical hash||little-endian-index
// encoding used as Merkle-leaf input material by the issuance deriver.
func (o Outpoint) Bytes() []byte {
	b := make([]byte, 36)
	copy(b[:32], o.Hash[:])
	b[32] = byte(o.Index)
	b[33] = byte(o.Index >> 8)
	b[34] = byte(o.Index >> 16)
	b[35] = byte(o.Index >> 24)
	return b
}

// IssuanceRecord is attached to an input that creates or reissues an asset.
// An all-zero BlindingNonce distinguishes initial issuance from reissuance.
type IssuanceRecord struct {
	BlindingNonce [32]byte
	AssetEntropy  [32]byte
	Amount        ValueField
	InflationKeys ValueField
}

// IsNull reports whether this is the zero IssuanceRecord, i.e. the input
// carries no issuance at all.
func (r IssuanceRecord) IsNull() bool {
	return r.BlindingNonce == [32]byte{} && r.AssetEntropy == [32]byte{} &&
		r.Amount.Kind == Null && r.InflationKeys.Kind == Null
}

// IsReissuance reports whether this record reissues a previously issued
// asset rather than minting it for the first time.
func (r IssuanceRecord) IsReissuance() bool {
	return r.BlindingNonce != [32]byte{}
}

// TxIn is a transaction input together with its (optional) issuance.
type TxIn struct {
	PrevOut  Outpoint
	Issuance IssuanceRecord
}

// TxOut is a confidential transaction output.
type TxOut struct {
	Asset  AssetField
	Value  ValueField
	Nonce  NonceField
	Script []byte
}

// IsFee reports whether this output is the chain's fee-output convention: an
// empty script carrying explicit asset and value fields. Fee outputs may
// only carry explicit fields (spec §3).
func (o TxOut) IsFee() bool {
	return len(o.Script) == 0 && o.Asset.IsExplicit() && o.Value.IsExplicit()
}

// UnspendableScript reports whether a script provably burns its output,
// mirroring the hosting chain's CScript::IsUnspendable: a script beginning
// with OP_RETURN (0x6a) can never be satisfied by a witness/scriptSig.
func UnspendableScript(script []byte) bool {
	return len(script) > 0 && script[0] == 0x6a
}

// InputWitness holds the per-input witness data relevant to amount
// verification: rangeproofs over the two possible issuance pseudo-inputs.
type InputWitness struct {
	IssuanceAmountRangeproof []byte
	InflationKeysRangeproof  []byte
}

// OutputWitness holds the per-output witness data relevant to amount
// verification.
type OutputWitness struct {
	Rangeproof      []byte
	SurjectionProof []byte
}

// SerializedSize approximates the wire size of this witness slot as the sum
// of its proof payloads. Exact varint-length-prefix accounting is a
// property of the external codec (spec §1); the discounted-vsize formula
// only needs the dominant proof-byte contribution to subtract per output.
func (w OutputWitness) SerializedSize() int64 {
	return int64(len(w.Rangeproof) + len(w.SurjectionProof))
}

// Witness is the parallel, index-aligned witness bundle for a transaction.
// A slot shorter than the corresponding Inputs/Outputs slice means "no
// witness present for indices beyond its length" (spec §3).
type Witness struct {
	Inputs  []InputWitness
	Outputs []OutputWitness
}

func (w Witness) inputAt(i int) (InputWitness, bool) {
	if i < 0 || i >= len(w.Inputs) {
		return InputWitness{}, false
	}
	return w.Inputs[i], true
}

func (w Witness) outputAt(i int) (OutputWitness, bool) {
	if i < 0 || i >= len(w.Outputs) {
		return OutputWitness{}, false
	}
	return w.Outputs[i], true
}

// InputWitnessAt returns the input witness at i and whether the slot exists.
func (w Witness) InputWitnessAt(i int) (InputWitness, bool) { return w.inputAt(i) }

// OutputWitnessAt returns the output witness at i and whether the slot exists.
func (w Witness) OutputWitnessAt(i int) (OutputWitness, bool) { return w.outputAt(i) }

// Transaction is the already-parsed confidential transaction the verifier
// consumes. Exact wire decoding is an external collaborator (spec §1).
type Transaction struct {
	Inputs  []TxIn
	Outputs []TxOut
	Witness Witness

	// SerializedNoWitnessSize and SerializedSize back DiscountedVirtualSize
	// (spec §4.F); they are supplied by the external deserializer rather
	// than recomputed here.
	SerializedNoWitnessSize int64
	SerializedSize          int64

	// Serialized is the full witness-inclusive wire encoding, supplied by
	// the external deserializer (spec §1) solely so the verifier can
	// precompute the witness txid (spec §4.E step 1) without owning a
	// codec of its own.
	Serialized []byte
}

// NumIssuancePseudoInputs returns how many pseudo-inputs the issuance walk
// will synthesize across all inputs: one per non-null Amount field, one per
// non-null InflationKeys field. Used only as a capacity hint — the verifier
// never indexes through a pointer derived from this count (see DESIGN.md,
// "arena-plus-index").
func (tx Transaction) NumIssuancePseudoInputs() int {
	n := 0
	for _, in := range tx.Inputs {
		if in.Issuance.IsNull() {
			continue
		}
		if !in.Issuance.Amount.IsNull() {
			n++
		}
		if !in.Issuance.InflationKeys.IsNull() {
			n++
		}
	}
	return n
}
