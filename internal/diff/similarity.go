package diff

// Similarity computes the Ratcliff-Obershelp ratio of two strings in
// [0, 1]: twice the total length of the recursively longest matching
// blocks over the combined length. Operates on runes so multi-byte output
// (degree signs, emoji) compares correctly.
func Similarity(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	total := len(ra) + len(rb)
	if total == 0 {
		return 1.0
	}
	matched := 2 * matchedRunes(ra, rb)
	return float64(matched) / float64(total)
}

// matchedRunes sums the sizes of all matching blocks: find the longest
// common block, then recurse on the pieces to its left and right.
func matchedRunes(a, b []rune) int {
	type span struct {
		alo, ahi, blo, bhi int
	}
	queue := []span{{0, len(a), 0, len(b)}}
	matched := 0
	for len(queue) > 0 {
		s := queue[len(queue)-1]
		queue = queue[:len(queue)-1]

		ai, bj, size := longestMatch(a, b, s.alo, s.ahi, s.blo, s.bhi)
		if size == 0 {
			continue
		}
		matched += size
		queue = append(queue,
			span{s.alo, ai, s.blo, bj},
			span{ai + size, s.ahi, bj + size, s.bhi})
	}
	return matched
}

// longestMatch finds the longest block with a[ai:ai+size] == b[bj:bj+size]
// inside the given window, preferring the earliest block in a, then in b,
// on ties.
func longestMatch(a, b []rune, alo, ahi, blo, bhi int) (int, int, int) {
	// b2j: positions of each rune in the b window.
	b2j := make(map[rune][]int, bhi-blo)
	for j := blo; j < bhi; j++ {
		b2j[b[j]] = append(b2j[b[j]], j)
	}

	besti, bestj, bestsize := alo, blo, 0
	// j2len[j] = length of the match ending at a[i-1], b[j-1].
	j2len := make(map[int]int)
	for i := alo; i < ahi; i++ {
		next := make(map[int]int)
		for _, j := range b2j[a[i]] {
			k := j2len[j-1] + 1
			next[j] = k
			if k > bestsize {
				besti, bestj, bestsize = i-k+1, j-k+1, k
			}
		}
		j2len = next
	}
	return besti, bestj, bestsize
}
