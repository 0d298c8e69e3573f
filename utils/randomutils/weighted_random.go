package randomutils

import (
	"math/rand"
	"sync"
	"time"

	"github.com/pkg/errors"
)

// WeightedRandomChoice describes a weighted, randomly selectable object for use with a WeightedRandomChooser.
type WeightedRandomChoice[T any] struct {
	// Data describes the wrapped data that a WeightedRandomChooser should return when making a random WeightedRandomChoice selection.
	Data T

	// weight describes a value indicating the likelihood of this WeightedRandomChoice to appear in a random selection.
	// Its probability is calculated as current weight / all weights in a WeightedRandomChooser.
	weight int64
}

// NewWeightedRandomChoice creates a WeightedRandomChoice with the given underlying data and weight to use when added to a WeightedRandomChooser.
func NewWeightedRandomChoice[T any](data T, weight int64) *WeightedRandomChoice[T] {
	return &WeightedRandomChoice[T]{
		Data:   data,
		weight: weight,
	}
}

// WeightedRandomChooser takes a series of WeightedRandomChoice objects which wrap underlying data, and returns one
// of the weighted options randomly.
type WeightedRandomChooser[T any] struct {
	// choices describes the weighted choices from which the chooser will randomly select.
	choices []*WeightedRandomChoice[T]

	// totalWeight describes the sum of all weights in choices. This is stored here so it does not need to be
	// recomputed.
	totalWeight int64

	// randomProvider offers a source of random data.
	randomProvider *rand.Rand
	// randomProviderLock is a lock to offer thread safety to the random number generator.
	randomProviderLock *sync.Mutex
}

// NewWeightedRandomChooser creates a WeightedRandomChooser with a new random provider and mutex lock.
func NewWeightedRandomChooser[T any]() *WeightedRandomChooser[T] {
	return NewWeightedRandomChooserWithRand[T](rand.New(rand.NewSource(time.Now().Unix())), &sync.Mutex{})
}

// NewWeightedRandomChooserWithRand creates a WeightedRandomChooser with the provided random provider and mutex lock to be acquired when using it.
func NewWeightedRandomChooserWithRand[T any](randomProvider *rand.Rand, randomProviderLock *sync.Mutex) *WeightedRandomChooser[T] {
	return &WeightedRandomChooser[T]{
		choices:            make([]*WeightedRandomChoice[T], 0),
		randomProvider:     randomProvider,
		randomProviderLock: randomProviderLock,
	}
}

// ChoiceCount returns the count of choices added to this provider.
func (c *WeightedRandomChooser[T]) ChoiceCount() int {
	return len(c.choices)
}

// AddChoices adds weighted choices to the WeightedRandomChooser, allowing for future random selection.
func (c *WeightedRandomChooser[T]) AddChoices(choices ...*WeightedRandomChoice[T]) {
	// Acquire our lock during the duration of this method.
	c.randomProviderLock.Lock()
	defer c.randomProviderLock.Unlock()

	// Loop for each choice to add to sum all weights
	for _, choice := range choices {
		c.totalWeight += choice.weight
	}

	// Add to choices to our array
	c.choices = append(c.choices, choices...)
}

// Choose selects a random weighted item from the WeightedRandomChooser, or returns an error if one occurs.
func (c *WeightedRandomChooser[T]) Choose() (*T, error) {
	choice, err := c.choose()
	if err != nil {
		return nil, err
	}
	return &choice.Data, nil
}

// ChooseWithRemoval selects a random weighted item from the WeightedRandomChooser and removes it from the
// underlying choice set, so that subsequent selections draw from the remaining choices only.
func (c *WeightedRandomChooser[T]) ChooseWithRemoval() (*T, error) {
	choice, err := c.choose()
	if err != nil {
		return nil, err
	}

	c.randomProviderLock.Lock()
	defer c.randomProviderLock.Unlock()
	for i, candidate := range c.choices {
		if candidate == choice {
			c.choices = append(c.choices[:i], c.choices[i+1:]...)
			c.totalWeight -= choice.weight
			break
		}
	}
	return &choice.Data, nil
}

// choose selects a random weighted choice from the WeightedRandomChooser, or returns an error if one occurs.
func (c *WeightedRandomChooser[T]) choose() (*WeightedRandomChoice[T], error) {
	// If we have no choices or 0 total weight, return nil.
	if len(c.choices) == 0 || c.totalWeight == 0 {
		return nil, errors.New("could not return a weighted random choice because no choices exist with non-zero weights")
	}

	// Acquire our lock during the duration of this method.
	c.randomProviderLock.Lock()
	defer c.randomProviderLock.Unlock()

	// We'll want to randomly select a position in our total weight that will determine which item to return.
	selectedWeightPosition := c.randomProvider.Int63n(c.totalWeight)

	// Loop for each item
	for _, choice := range c.choices {
		// If our selected weight position is in range for this item, return it
		if selectedWeightPosition < choice.weight {
			return choice, nil
		}

		// Subtract the choice weight from the current position, and go to the next item to see if it's in range.
		selectedWeightPosition -= choice.weight
	}

	return nil, errors.New("could not obtain a weighted random choice, selected position does not exist")
}
