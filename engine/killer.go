package engine

const MaxKillerSlots = 4

// KillerTable keeps, per search ply, the last moves that caused a beta cutoff.
// Only move ordering reads it.
type KillerTable struct {
	slots int
	moves [MaxPly][MaxKillerSlots]Move
}

func NewKillerTable(slots int) *KillerTable {
	if slots > MaxKillerSlots {
		slots = MaxKillerSlots
	}
	return &KillerTable{slots: slots}
}

// Record puts the move in front of the ply's slots. A move already stored moves
// to the front instead of being duplicated.
func (k *KillerTable) Record(m Move, ply int) {
	if k.slots == 0 || ply < 0 || ply >= MaxPly || m == NoMove {
		return
	}
	slots := &k.moves[ply]
	idx := k.slots - 1
	for i := 0; i < k.slots; i++ {
		if slots[i] == m {
			idx = i
			break
		}
	}
	for i := idx; i > 0; i-- {
		slots[i] = slots[i-1]
	}
	slots[0] = m
}

// Killers returns the stored moves for ply, most recent first.
func (k *KillerTable) Killers(ply int) []Move {
	if ply < 0 || ply >= MaxPly {
		return nil
	}
	slots := k.moves[ply][:k.slots]
	n := 0
	for n < len(slots) && slots[n] != NoMove {
		n++
	}
	return slots[:n]
}
