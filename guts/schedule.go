package guts

// messageSchedule holds, for each of the 7 mixing rounds, the permutation
// of the 16 message words that round consumes. Round 0 is the identity;
// every later round is the previous round's schedule permuted by sigma,
// the same word-shuffle BLAKE3 applies to its own message words between
// rounds.
var messageSchedule = func() (sched [7][16]int) {
	sigma := [16]int{2, 6, 3, 10, 7, 0, 4, 13, 1, 11, 12, 5, 9, 14, 15, 8}
	for i := range sched[0] {
		sched[0][i] = i
	}
	for round := 1; round < 7; round++ {
		prev := sched[round-1]
		for i, s := range sigma {
			sched[round][i] = prev[s]
		}
	}
	return
}()
