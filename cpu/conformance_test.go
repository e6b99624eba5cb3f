package cpu

import "testing"

// conformanceSkip documents fixtures that are deliberately not run because
// the behavior they would exercise is a documented design choice rather
// than a bug. Remove an entry once the underlying approximation is lifted.
var conformanceSkip = map[string]string{}

// conformanceCase is a single instruction-sequence fixture: load words,
// run Step() ticks times, then compare a subset of CPU state. A nil
// pointer field means "don't check this field" — most fixtures only
// care about the registers the instructions under test actually touch.
type conformanceCase struct {
	name  string
	words []uint16
	ticks int

	wantReg        map[int]uint16
	wantEX         *uint16
	wantSP         *uint16
	wantPC         *uint16
	wantCycleCount uint32
}

func u16p(v uint16) *uint16 { return &v }

var conformanceCases = []conformanceCase{
	{
		name:           "set-two-registers-from-next-word-literals",
		words:          []uint16{0x7c01, 0x0030, 0x7c21, 0x0011},
		ticks:          4,
		wantReg:        map[int]uint16{A: 0x30, B: 0x11},
		wantPC:         u16p(4),
		wantCycleCount: 4,
	},
	{
		name:           "add-overflow-sets-ex",
		words:          []uint16{0x7c01, 0xffff, 0x8802},
		ticks:          4,
		wantReg:        map[int]uint16{A: 0},
		wantEX:         u16p(1),
		wantCycleCount: 4,
	},
	{
		name:           "mul-overflow-sets-ex",
		words:          []uint16{0x7c01, 0x8000, 0x8c04},
		ticks:          3,
		wantReg:        map[int]uint16{A: 0},
		wantEX:         u16p(1),
		wantCycleCount: 3,
	},
	{
		name:           "sbx-borrow-sets-ex-to-all-ones",
		words:          []uint16{0x8401, 0x881b},
		ticks:          2,
		wantReg:        map[int]uint16{A: 0xffff},
		wantEX:         u16p(0xffff),
		wantCycleCount: 2,
	},
	{
		name:           "sti-writes-through-and-increments-i-and-j",
		words:          []uint16{0xacc1, 0xd4e1, 0x981e},
		ticks:          3,
		wantReg:        map[int]uint16{A: 5, I: 11, J: 21},
		wantCycleCount: 3,
	},
	{
		name:           "shr-is-a-logical-shift",
		words:          []uint16{0x7c01, 0xffff, 0x880d},
		ticks:          3,
		wantReg:        map[int]uint16{A: 0x7fff},
		wantEX:         u16p(0x8000),
		wantCycleCount: 3,
	},
	{
		name: "ifn-chain-skips-through-the-guarded-instruction",
		words: []uint16{
			0x7c01, 0x0001, // SET A, 1
			0x8813, // IFN A, 1 (false)
			0x8813, // chained, not evaluated
			0x8813, // chained, not evaluated
			0x7c21, 0x002a, // SET B, 42 (guarded, skipped)
			0x7c41, 0x002b, // SET C, 43 (first instruction actually run)
		},
		ticks:          8,
		wantReg:        map[int]uint16{A: 1, B: 0, C: 43},
		wantCycleCount: 8,
	},
	{
		name:           "arith-with-literal-destination-still-updates-ex",
		words:          []uint16{0x7c01, 0xffff, 0x03e2, 0x0005}, // SET A, 0xffff; ADD 5, A
		ticks:          3,
		wantReg:        map[int]uint16{A: 0xffff},
		wantEX:         u16p(1),
		wantCycleCount: 3,
	},
	{
		name: "jsr-then-pop-return-restores-sp",
		words: []uint16{
			0x9461,         // SET X, 4
			0x7c20, 0x0005, // JSR 0x0005
			0x7f81, 0x0004, // SET PC, 4 (crash loop if JSR misbehaves)
			0x946f, // (addr 5) SHL X, 4
			0x6381, // SET PC, POP
		},
		ticks:          7,
		wantReg:        map[int]uint16{X: 0x40},
		wantSP:         u16p(0),
		wantCycleCount: 7,
	},
}

func TestConformanceFixtures(t *testing.T) {
	for _, tc := range conformanceCases {
		t.Run(tc.name, func(t *testing.T) {
			if reason, ok := conformanceSkip[tc.name]; ok {
				t.Skip(reason)
			}

			c := New()
			c.LoadImage(tc.words)
			for i := 0; i < tc.ticks; i++ {
				c.Step()
			}

			for reg, want := range tc.wantReg {
				if got := c.Reg[reg]; got != want {
					t.Errorf("Reg[%d] = 0x%x, want 0x%x", reg, got, want)
				}
			}
			if tc.wantEX != nil && c.EX != *tc.wantEX {
				t.Errorf("EX = 0x%x, want 0x%x", c.EX, *tc.wantEX)
			}
			if tc.wantSP != nil && c.SP != *tc.wantSP {
				t.Errorf("SP = 0x%x, want 0x%x", c.SP, *tc.wantSP)
			}
			if tc.wantPC != nil && c.PC != *tc.wantPC {
				t.Errorf("PC = %d, want %d", c.PC, *tc.wantPC)
			}
			if tc.wantCycleCount != 0 && c.CycleCount != tc.wantCycleCount {
				t.Errorf("CycleCount = %d, want %d", c.CycleCount, tc.wantCycleCount)
			}
		})
	}
}
