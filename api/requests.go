package api

type RoundRequestDTO struct {
	Round uint64
}
