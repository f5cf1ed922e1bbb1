package model

// Block carries the chain metadata of the event being applied.
type Block struct {
	Number    uint64 `json:"number"`
	Timestamp uint64 `json:"timestamp"`
}
