package coordinator

import (
	"github.com/fxamacker/cbor/v2"

	"github.com/fedprompt/fedprompt/client"
)

// UpdateEnvelope is the wire form of a client update published on the
// event stream. CBOR keeps the parameter tensors compact.
type UpdateEnvelope struct {
	RunID      string               `cbor:"run_id"`
	Round      uint64               `cbor:"round"`
	ClientID   string               `cbor:"client_id"`
	NumSamples uint64               `cbor:"num_samples"`
	Params     map[string][]float64 `cbor:"params"`
	Metrics    map[string]float64   `cbor:"metrics,omitempty"`
}

func EncodeUpdate(runID string, u client.Update) ([]byte, error) {
	envelope := UpdateEnvelope{
		RunID:      runID,
		Round:      u.Round,
		ClientID:   u.ClientID,
		NumSamples: u.NumSamples,
		Params:     u.Params.Data,
		Metrics:    u.Metrics,
	}

	return cbor.Marshal(envelope)
}

func DecodeUpdate(data []byte) (UpdateEnvelope, error) {
	var envelope UpdateEnvelope
	if err := cbor.Unmarshal(data, &envelope); err != nil {
		return UpdateEnvelope{}, err
	}

	return envelope, nil
}
