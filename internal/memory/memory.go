// Package memory implements the calculator's numbered memory slots.
package memory

import (
	"errors"
	"fmt"
	"strconv"
	"sync"
)

// Slots is the number of memory slots, named M1 through M8.
const Slots = 8

// FullLabel is the free-slot label once every slot is taken.
const FullLabel = "Mx"

var (
	ErrFull  = errors.New("all memory slots are in use")
	ErrSlot  = errors.New("no such memory slot")
	ErrEmpty = errors.New("memory slot is empty")
	ErrValue = errors.New("value is not a number")
)

// Slot is one memory slot.
type Slot struct {
	Name        string `json:"name"`
	Value       string `json:"value,omitempty"`
	Description string `json:"description,omitempty"`
	Used        bool   `json:"used"`
}

// Bank holds the slots of one calculator. It is safe for concurrent use.
type Bank struct {
	mu    sync.Mutex
	slots [Slots]Slot
}

func New() *Bank {
	b := &Bank{}
	for i := range b.slots {
		b.slots[i].Name = Name(i + 1)
	}
	return b
}

// Name is the label of slot n, counting from 1.
func Name(n int) string {
	return fmt.Sprintf("M%d", n)
}

// Parse turns a slot label such as "M3" (or "3") into its number.
func Parse(name string) (int, error) {
	s := name
	if len(s) > 0 && (s[0] == 'M' || s[0] == 'm') {
		s = s[1:]
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 || n > Slots {
		return 0, fmt.Errorf("%w: %q", ErrSlot, name)
	}
	return n, nil
}

// Store puts value into the lowest free slot and returns that slot.
func (b *Bank) Store(value string) (Slot, error) {
	if _, err := strconv.ParseFloat(value, 64); err != nil {
		return Slot{}, fmt.Errorf("%w: %q", ErrValue, value)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	i := b.nextFree()
	if i < 0 {
		return Slot{}, ErrFull
	}
	b.slots[i].Value = value
	b.slots[i].Description = ""
	b.slots[i].Used = true
	return b.slots[i], nil
}

// NextFree is the label of the slot Store would use next, or FullLabel.
func (b *Bank) NextFree() string {
	b.mu.Lock()
	defer b.mu.Unlock()

	i := b.nextFree()
	if i < 0 {
		return FullLabel
	}
	return b.slots[i].Name
}

// Recall returns the value held in slot n.
func (b *Bank) Recall(n int) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	s, err := b.slot(n)
	if err != nil {
		return "", err
	}
	if !s.Used {
		return "", fmt.Errorf("%w: %s", ErrEmpty, s.Name)
	}
	return s.Value, nil
}

// Describe sets the note attached to a used slot.
func (b *Bank) Describe(n int, description string) (Slot, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	s, err := b.slot(n)
	if err != nil {
		return Slot{}, err
	}
	if !s.Used {
		return Slot{}, fmt.Errorf("%w: %s", ErrEmpty, s.Name)
	}
	s.Description = description
	return *s, nil
}

// Clear frees slot n. Clearing a free slot is not an error.
func (b *Bank) Clear(n int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	s, err := b.slot(n)
	if err != nil {
		return err
	}
	*s = Slot{Name: s.Name}
	return nil
}

func (b *Bank) ClearAll() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i := range b.slots {
		b.slots[i] = Slot{Name: b.slots[i].Name}
	}
}

// List returns every slot in order, used or not.
func (b *Bank) List() []Slot {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]Slot, Slots)
	copy(out, b.slots[:])
	return out
}

func (b *Bank) slot(n int) (*Slot, error) {
	if n < 1 || n > Slots {
		return nil, fmt.Errorf("%w: %d", ErrSlot, n)
	}
	return &b.slots[n-1], nil
}

func (b *Bank) nextFree() int {
	for i := range b.slots {
		if !b.slots[i].Used {
			return i
		}
	}
	return -1
}
