package queue

type TaskType string

const (
	TaskTypeDeckGeneration TaskType = "deck_generation"
)
