package automata

// Minimize merges DFA states that accept the same rule and are pairwise
// indistinguishable under every byte, by Moore partition refinement. The
// initial partition groups states by accepting tag; refinement splits a
// class whenever two members disagree on the class of any successor, and
// repeats to a fixed point. The matched language and the rule chosen for
// every input are unchanged; only the state count shrinks.
func Minimize(d *DFA) *DFA {
	n := d.Len()

	// Initial partition: accepting tag, classes numbered by first
	// occurrence in state-id order so the result is deterministic.
	class := make([]int, n)
	classOf := map[int]int{}
	count := 0
	for s := 0; s < n; s++ {
		tag := d.Accept[s]
		id, ok := classOf[tag]
		if !ok {
			id = count
			count++
			classOf[tag] = id
		}
		class[s] = id
	}

	// Refine until stable. A state's signature is its own class plus the
	// class of its successor for each byte.
	for {
		next := make([]int, n)
		sigOf := map[string]int{}
		nextCount := 0
		sig := make([]byte, 0, (256+1)*4)
		for s := 0; s < n; s++ {
			sig = sig[:0]
			sig = appendInt(sig, class[s])
			for b := 0; b < 256; b++ {
				sig = appendInt(sig, class[d.Trans[s][b]])
			}
			id, ok := sigOf[string(sig)]
			if !ok {
				id = nextCount
				nextCount++
				sigOf[string(sig)] = id
			}
			next[s] = id
		}
		if nextCount == count {
			break
		}
		class, count = next, nextCount
	}

	// Renumber so the class of the old reject state is 0; other classes
	// keep first-occurrence order, which also puts the start state's
	// class early.
	renum := make([]int, count)
	for i := range renum {
		renum[i] = -1
	}
	renum[class[Reject]] = 0
	assigned := 1
	for s := 0; s < n; s++ {
		if renum[class[s]] == -1 {
			renum[class[s]] = assigned
			assigned++
		}
	}

	min := &DFA{
		Trans:  make([][256]StateID, count),
		Accept: make([]int, count),
		Start:  StateID(renum[class[d.Start]]),
	}
	for i := range min.Accept {
		min.Accept[i] = NoRule
	}
	done := make([]bool, count)
	for s := 0; s < n; s++ {
		id := renum[class[s]]
		if done[id] {
			continue
		}
		done[id] = true
		min.Accept[id] = d.Accept[s]
		for b := 0; b < 256; b++ {
			min.Trans[id][b] = StateID(renum[class[d.Trans[s][b]]])
		}
	}
	return min
}

func appendInt(b []byte, v int) []byte {
	return append(b, byte(v), byte(v>>8), byte(v>>16), byte(v>>24))
}
