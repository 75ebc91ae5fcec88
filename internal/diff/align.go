package diff

// OpTag labels one region of an edit script.
type OpTag string

const (
	OpEqual   OpTag = "equal"
	OpReplace OpTag = "replace"
	OpDelete  OpTag = "delete"
	OpInsert  OpTag = "insert"
)

// Opcode describes how a[I1:I2] maps onto b[J1:J2].
type Opcode struct {
	Tag            OpTag
	I1, I2, J1, J2 int
}

type matchBlock struct {
	a, b, size int
}

// AlignSequences produces an LCS-based edit script between two token
// sequences. Position and order matter: the script is the minimal set of
// equal/replace/delete/insert regions that turns a into b, in order.
func AlignSequences(a, b []string) []Opcode {
	blocks := matchingBlocks(a, b)

	var ops []Opcode
	ai, bj := 0, 0
	for _, block := range blocks {
		tag := OpTag("")
		switch {
		case ai < block.a && bj < block.b:
			tag = OpReplace
		case ai < block.a:
			tag = OpDelete
		case bj < block.b:
			tag = OpInsert
		}
		if tag != "" {
			ops = append(ops, Opcode{Tag: tag, I1: ai, I2: block.a, J1: bj, J2: block.b})
		}
		ai, bj = block.a+block.size, block.b+block.size
		if block.size > 0 {
			ops = append(ops, Opcode{Tag: OpEqual, I1: block.a, I2: ai, J1: block.b, J2: bj})
		}
	}
	return ops
}

// matchingBlocks returns the maximal runs of equal tokens along a longest
// common subsequence, ascending, terminated by a zero-size sentinel at
// (len(a), len(b)).
func matchingBlocks(a, b []string) []matchBlock {
	n, m := len(a), len(b)

	// Classic LCS length table, then backtrack to recover the matched pairs.
	lcs := make([][]int, n+1)
	for i := range lcs {
		lcs[i] = make([]int, m+1)
	}
	for i := n - 1; i >= 0; i-- {
		for j := m - 1; j >= 0; j-- {
			if a[i] == b[j] {
				lcs[i][j] = lcs[i+1][j+1] + 1
			} else if lcs[i+1][j] >= lcs[i][j+1] {
				lcs[i][j] = lcs[i+1][j]
			} else {
				lcs[i][j] = lcs[i][j+1]
			}
		}
	}

	var blocks []matchBlock
	i, j := 0, 0
	for i < n && j < m {
		if a[i] == b[j] {
			if len(blocks) > 0 {
				last := &blocks[len(blocks)-1]
				if last.a+last.size == i && last.b+last.size == j {
					last.size++
					i++
					j++
					continue
				}
			}
			blocks = append(blocks, matchBlock{a: i, b: j, size: 1})
			i++
			j++
		} else if lcs[i+1][j] >= lcs[i][j+1] {
			i++
		} else {
			j++
		}
	}

	blocks = append(blocks, matchBlock{a: n, b: m, size: 0})
	return blocks
}
