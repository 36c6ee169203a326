package api

import (
	"encoding/hex"
	"fmt"

	"github.com/rawblock/confidential-verifier/pkg/confidential"
)

// The types in this file are the HTTP wire shapes for a confidential
// transaction: hex-encoded byte fields over JSON. Decoding them into
// pkg/confidential's domain types is the external deserialization step
// the verifier itself deliberately stays out of (spec §1).

type valueFieldDTO struct {
	Kind       string `json:"kind"`
	Explicit   int64  `json:"explicit,omitempty"`
	Commitment string `json:"commitment,omitempty"`
}

type assetFieldDTO struct {
	Kind       string `json:"kind"`
	ID         string `json:"id,omitempty"`
	Commitment string `json:"commitment,omitempty"`
}

type nonceFieldDTO struct {
	Kind       string `json:"kind"`
	Commitment string `json:"commitment,omitempty"`
}

type outpointDTO struct {
	Hash  string `json:"hash"`
	Index uint32 `json:"index"`
}

type issuanceDTO struct {
	BlindingNonce string        `json:"blindingNonce"`
	AssetEntropy  string        `json:"assetEntropy"`
	Amount        valueFieldDTO `json:"amount"`
	InflationKeys valueFieldDTO `json:"inflationKeys"`
}

type txInDTO struct {
	PrevOut  outpointDTO  `json:"prevOut"`
	Issuance *issuanceDTO `json:"issuance,omitempty"`
}

type txOutDTO struct {
	Asset  assetFieldDTO `json:"asset"`
	Value  valueFieldDTO `json:"value"`
	Nonce  nonceFieldDTO `json:"nonce"`
	Script string        `json:"script"`
}

type inputWitnessDTO struct {
	IssuanceAmountRangeproof string `json:"issuanceAmountRangeproof,omitempty"`
	InflationKeysRangeproof  string `json:"inflationKeysRangeproof,omitempty"`
}

type outputWitnessDTO struct {
	Rangeproof      string `json:"rangeproof,omitempty"`
	SurjectionProof string `json:"surjectionProof,omitempty"`
}

type transactionDTO struct {
	Inputs  []txInDTO          `json:"inputs"`
	Outputs []txOutDTO         `json:"outputs"`
	Witness struct {
		Inputs  []inputWitnessDTO  `json:"inputs"`
		Outputs []outputWitnessDTO `json:"outputs"`
	} `json:"witness"`
	SerializedNoWitnessSize int64  `json:"serializedNoWitnessSize"`
	SerializedSize          int64  `json:"serializedSize"`
	Serialized              string `json:"serialized"`
}

type verifyRequest struct {
	Prevouts    []txOutDTO     `json:"prevouts"`
	Tx          transactionDTO `json:"tx"`
	StoreResult bool           `json:"storeResult"`
	Defer       bool           `json:"defer"`
}

func decodeHex32(s string) ([32]byte, error) {
	var out [32]byte
	if s == "" {
		return out, nil
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return out, fmt.Errorf("invalid hex: %w", err)
	}
	if len(b) != 32 {
		return out, fmt.Errorf("expected 32 bytes, got %d", len(b))
	}
	copy(out[:], b)
	return out, nil
}

func decodeHex33(s string) ([33]byte, error) {
	var out [33]byte
	if s == "" {
		return out, nil
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return out, fmt.Errorf("invalid hex: %w", err)
	}
	if len(b) != 33 {
		return out, fmt.Errorf("expected 33 bytes, got %d", len(b))
	}
	copy(out[:], b)
	return out, nil
}

func decodeValueField(d valueFieldDTO) (confidential.ValueField, error) {
	switch d.Kind {
	case "null", "":
		return confidential.ValueField{Kind: confidential.Null}, nil
	case "explicit":
		return confidential.ValueField{Kind: confidential.Explicit, Explicit: d.Explicit}, nil
	case "commitment":
		c, err := decodeHex33(d.Commitment)
		if err != nil {
			return confidential.ValueField{}, err
		}
		return confidential.ValueField{Kind: confidential.Commitment, Commitment: c}, nil
	default:
		return confidential.ValueField{}, fmt.Errorf("unknown value field kind %q", d.Kind)
	}
}

func decodeAssetField(d assetFieldDTO) (confidential.AssetField, error) {
	switch d.Kind {
	case "null", "":
		return confidential.AssetField{Kind: confidential.Null}, nil
	case "explicit":
		id, err := decodeHex32(d.ID)
		if err != nil {
			return confidential.AssetField{}, err
		}
		return confidential.AssetField{Kind: confidential.Explicit, ID: confidential.AssetID(id)}, nil
	case "commitment":
		c, err := decodeHex33(d.Commitment)
		if err != nil {
			return confidential.AssetField{}, err
		}
		return confidential.AssetField{Kind: confidential.Commitment, Commitment: c}, nil
	default:
		return confidential.AssetField{}, fmt.Errorf("unknown asset field kind %q", d.Kind)
	}
}

func decodeNonceField(d nonceFieldDTO) (confidential.NonceField, error) {
	switch d.Kind {
	case "null", "":
		return confidential.NonceField{Kind: confidential.Null}, nil
	case "explicit":
		return confidential.NonceField{Kind: confidential.Explicit}, nil
	case "commitment":
		c, err := decodeHex33(d.Commitment)
		if err != nil {
			return confidential.NonceField{}, err
		}
		return confidential.NonceField{Kind: confidential.Commitment, Commitment: c}, nil
	default:
		return confidential.NonceField{}, fmt.Errorf("unknown nonce field kind %q", d.Kind)
	}
}

func decodeIssuance(d *issuanceDTO) (confidential.IssuanceRecord, error) {
	if d == nil {
		return confidential.IssuanceRecord{}, nil
	}
	nonce, err := decodeHex32(d.BlindingNonce)
	if err != nil {
		return confidential.IssuanceRecord{}, fmt.Errorf("blindingNonce: %w", err)
	}
	entropy, err := decodeHex32(d.AssetEntropy)
	if err != nil {
		return confidential.IssuanceRecord{}, fmt.Errorf("assetEntropy: %w", err)
	}
	amount, err := decodeValueField(d.Amount)
	if err != nil {
		return confidential.IssuanceRecord{}, fmt.Errorf("amount: %w", err)
	}
	inflationKeys, err := decodeValueField(d.InflationKeys)
	if err != nil {
		return confidential.IssuanceRecord{}, fmt.Errorf("inflationKeys: %w", err)
	}
	return confidential.IssuanceRecord{
		BlindingNonce: nonce,
		AssetEntropy:  entropy,
		Amount:        amount,
		InflationKeys: inflationKeys,
	}, nil
}

func decodeTxOut(d txOutDTO) (confidential.TxOut, error) {
	asset, err := decodeAssetField(d.Asset)
	if err != nil {
		return confidential.TxOut{}, fmt.Errorf("asset: %w", err)
	}
	value, err := decodeValueField(d.Value)
	if err != nil {
		return confidential.TxOut{}, fmt.Errorf("value: %w", err)
	}
	nonce, err := decodeNonceField(d.Nonce)
	if err != nil {
		return confidential.TxOut{}, fmt.Errorf("nonce: %w", err)
	}
	script, err := hex.DecodeString(d.Script)
	if err != nil {
		return confidential.TxOut{}, fmt.Errorf("script: invalid hex: %w", err)
	}
	return confidential.TxOut{Asset: asset, Value: value, Nonce: nonce, Script: script}, nil
}

func decodeTransaction(d transactionDTO) (confidential.Transaction, error) {
	inputs := make([]confidential.TxIn, len(d.Inputs))
	for i, in := range d.Inputs {
		hash, err := decodeHex32(in.PrevOut.Hash)
		if err != nil {
			return confidential.Transaction{}, fmt.Errorf("inputs[%d].prevOut.hash: %w", i, err)
		}
		issuance, err := decodeIssuance(in.Issuance)
		if err != nil {
			return confidential.Transaction{}, fmt.Errorf("inputs[%d].issuance: %w", i, err)
		}
		inputs[i] = confidential.TxIn{
			PrevOut:  confidential.Outpoint{Hash: hash, Index: in.PrevOut.Index},
			Issuance: issuance,
		}
	}

	outputs := make([]confidential.TxOut, len(d.Outputs))
	for i, out := range d.Outputs {
		o, err := decodeTxOut(out)
		if err != nil {
			return confidential.Transaction{}, fmt.Errorf("outputs[%d]: %w", i, err)
		}
		outputs[i] = o
	}

	inputWitnesses := make([]confidential.InputWitness, len(d.Witness.Inputs))
	for i, iw := range d.Witness.Inputs {
		amountRP, err := hex.DecodeString(iw.IssuanceAmountRangeproof)
		if err != nil {
			return confidential.Transaction{}, fmt.Errorf("witness.inputs[%d].issuanceAmountRangeproof: %w", i, err)
		}
		keysRP, err := hex.DecodeString(iw.InflationKeysRangeproof)
		if err != nil {
			return confidential.Transaction{}, fmt.Errorf("witness.inputs[%d].inflationKeysRangeproof: %w", i, err)
		}
		inputWitnesses[i] = confidential.InputWitness{IssuanceAmountRangeproof: amountRP, InflationKeysRangeproof: keysRP}
	}

	outputWitnesses := make([]confidential.OutputWitness, len(d.Witness.Outputs))
	for i, ow := range d.Witness.Outputs {
		rp, err := hex.DecodeString(ow.Rangeproof)
		if err != nil {
			return confidential.Transaction{}, fmt.Errorf("witness.outputs[%d].rangeproof: %w", i, err)
		}
		sp, err := hex.DecodeString(ow.SurjectionProof)
		if err != nil {
			return confidential.Transaction{}, fmt.Errorf("witness.outputs[%d].surjectionProof: %w", i, err)
		}
		outputWitnesses[i] = confidential.OutputWitness{Rangeproof: rp, SurjectionProof: sp}
	}

	serialized, err := hex.DecodeString(d.Serialized)
	if err != nil {
		return confidential.Transaction{}, fmt.Errorf("serialized: invalid hex: %w", err)
	}

	return confidential.Transaction{
		Inputs:                  inputs,
		Outputs:                 outputs,
		Witness:                 confidential.Witness{Inputs: inputWitnesses, Outputs: outputWitnesses},
		SerializedNoWitnessSize: d.SerializedNoWitnessSize,
		SerializedSize:          d.SerializedSize,
		Serialized:              serialized,
	}, nil
}
