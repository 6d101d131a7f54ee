package encoding

import (
	"encoding/hex"
	"math"
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orbital-sentinel/sentinel/internal/errors"
)

var laneSchema = Schema{
	Workflow: "ccip",
	Version:  1,
	Fields: []Field{
		{Name: "okLaneCount", Scale: Scale1},
		{Name: "totalLaneCount", Scale: Scale1},
	},
}

func TestEncodeAbsoluteLayout(t *testing.T) {
	// Hand-computed ABI encoding of
	// (uint256 1700000000, string "ccip", string "ccip:ok", uint256 5, uint256 6):
	// five head words, then the two string tails with their length words.
	gen := time.Unix(1700000000, 0).UTC()

	encoded, err := laneSchema.Encode(gen, "ccip:ok", []*big.Int{big.NewInt(5), big.NewInt(6)})
	require.NoError(t, err)

	expected := "" +
		"000000000000000000000000000000000000000000000000000000006553f100" + // timestamp
		"00000000000000000000000000000000000000000000000000000000000000a0" + // offset workflowName
		"00000000000000000000000000000000000000000000000000000000000000e0" + // offset riskLabel
		"0000000000000000000000000000000000000000000000000000000000000005" + // okLaneCount
		"0000000000000000000000000000000000000000000000000000000000000006" + // totalLaneCount
		"0000000000000000000000000000000000000000000000000000000000000004" + // len("ccip")
		"6363697000000000000000000000000000000000000000000000000000000000" + // "ccip"
		"0000000000000000000000000000000000000000000000000000000000000007" + // len("ccip:ok")
		"636369703a6f6b00000000000000000000000000000000000000000000000000" // "ccip:ok"

	assert.Equal(t, expected, hex.EncodeToString(encoded))
}

func TestEncodeDeterministic(t *testing.T) {
	gen := time.Date(2026, 8, 23, 10, 15, 0, 0, time.UTC)
	values := []*big.Int{big.NewInt(12), big.NewInt(14)}

	a, err := laneSchema.Encode(gen, "ccip:warning", values)
	require.NoError(t, err)
	b, err := laneSchema.Encode(gen, "ccip:warning", values)
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestEncodeRoundtrip(t *testing.T) {
	gen := time.Date(2026, 8, 23, 10, 15, 0, 0, time.UTC)

	encoded, err := laneSchema.Encode(gen, "ccip:critical", []*big.Int{big.NewInt(1), big.NewInt(9)})
	require.NoError(t, err)

	out, err := laneSchema.Arguments().Unpack(encoded)
	require.NoError(t, err)
	require.Len(t, out, 5)

	assert.Equal(t, big.NewInt(gen.Unix()), out[0])
	assert.Equal(t, "ccip", out[1])
	assert.Equal(t, "ccip:critical", out[2])
	assert.Equal(t, big.NewInt(1), out[3])
	assert.Equal(t, big.NewInt(9), out[4])
}

func TestEncodeTimestampSecondsPrecision(t *testing.T) {
	// Sub-second detail never reaches the tuple: two generation times in
	// the same second encode identically.
	base := time.Date(2026, 8, 23, 10, 15, 0, 0, time.UTC)
	withNanos := base.Add(250 * time.Millisecond)
	values := []*big.Int{big.NewInt(5), big.NewInt(6)}

	a, err := laneSchema.Encode(base, "ccip:ok", values)
	require.NoError(t, err)
	b, err := laneSchema.Encode(withNanos, "ccip:ok", values)
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestEncodeRejectsBadInput(t *testing.T) {
	gen := time.Date(2026, 8, 23, 10, 15, 0, 0, time.UTC)

	t.Run("value count mismatch", func(t *testing.T) {
		_, err := laneSchema.Encode(gen, "ccip:ok", []*big.Int{big.NewInt(5)})
		require.Error(t, err)
		assert.Equal(t, errors.ErrorTypeEncoding, errors.TypeOf(err))
	})

	t.Run("nil value", func(t *testing.T) {
		_, err := laneSchema.Encode(gen, "ccip:ok", []*big.Int{big.NewInt(5), nil})
		require.Error(t, err)
	})

	t.Run("negative value", func(t *testing.T) {
		_, err := laneSchema.Encode(gen, "ccip:ok", []*big.Int{big.NewInt(5), big.NewInt(-1)})
		require.Error(t, err)
	})

	t.Run("pre-epoch generation time", func(t *testing.T) {
		_, err := laneSchema.Encode(time.Date(1969, 1, 1, 0, 0, 0, 0, time.UTC), "ccip:ok",
			[]*big.Int{big.NewInt(5), big.NewInt(6)})
		require.Error(t, err)
	})
}

func TestScaledUint(t *testing.T) {
	tests := []struct {
		name  string
		v     float64
		scale int64
		round Rounding
		want  *big.Int
	}{
		{"whole units", 40875000, Scale1, RoundNearest, big.NewInt(40875000)},
		{"two decimals", 99.2, Scale100, RoundNearest, big.NewInt(9920)},
		{"half away from zero", 2.5, Scale1, RoundNearest, big.NewInt(3)},
		{"price eight decimals", 15.43, Scale1e8, RoundNearest, big.NewInt(1543000000)},
		{"fraction six decimals", 0.87, Scale1e6, RoundNearest, big.NewInt(870000)},
		{"ratio around par", 0.9992, Scale1e4, RoundNearest, big.NewInt(9992)},
		{"truncate drops fraction", 5250000.9, Scale1, Truncate, big.NewInt(5250000)},
		{"round would lift it", 5250000.9, Scale1, RoundNearest, big.NewInt(5250001)},
		{"negative collapses to zero", -12.5, Scale100, RoundNearest, big.NewInt(0)},
		{"nan collapses to zero", math.NaN(), Scale1e6, RoundNearest, big.NewInt(0)},
		{"positive inf collapses to zero", math.Inf(1), Scale1, RoundNearest, big.NewInt(0)},
		{"negative inf collapses to zero", math.Inf(-1), Scale1, RoundNearest, big.NewInt(0)},
		{"zero stays zero", 0, Scale1e8, RoundNearest, big.NewInt(0)},
		{"tiny rounds to zero", 0.004, Scale100, RoundNearest, big.NewInt(0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ScaledUint(tt.v, tt.scale, tt.round)
			assert.Zero(t, tt.want.Cmp(got), "want %s got %s", tt.want, got)
		})
	}
}

func TestScaledUintBeyondInt64(t *testing.T) {
	// Powers of two are exact in float64, so the expected value is known
	// bit for bit even past the int64 range.
	v := float64(1) * math.Pow(2, 70)
	want := new(big.Int).Lsh(big.NewInt(1), 70)

	got := ScaledUint(v, Scale1, RoundNearest)
	assert.Zero(t, want.Cmp(got), "want %s got %s", want, got)
}

func TestUint(t *testing.T) {
	assert.Zero(t, big.NewInt(7).Cmp(Uint(7)))
	assert.Zero(t, big.NewInt(0).Cmp(Uint(0)))
	assert.Zero(t, big.NewInt(0).Cmp(Uint(-3)))
}

func TestPackLanes16(t *testing.T) {
	t.Run("two lanes", func(t *testing.T) {
		// lane0=3, lane1=5 → 5<<16 | 3
		want := big.NewInt(5<<16 | 3)
		assert.Zero(t, want.Cmp(PackLanes16([]uint64{3, 5})))
	})

	t.Run("lane zero least significant", func(t *testing.T) {
		word := PackLanes16([]uint64{0xAAAA, 0xBBBB, 0xCCCC})
		assert.Equal(t, "ccccbbbbaaaa", word.Text(16))
	})

	t.Run("clamps to 16 bits", func(t *testing.T) {
		want := big.NewInt(0xFFFF)
		assert.Zero(t, want.Cmp(PackLanes16([]uint64{70000})))
	})

	t.Run("drops lanes past sixteen", func(t *testing.T) {
		lanes := make([]uint64, 17)
		lanes[16] = 9
		assert.Zero(t, new(big.Int).Cmp(PackLanes16(lanes)))
	})

	t.Run("empty packs to zero", func(t *testing.T) {
		assert.Zero(t, new(big.Int).Cmp(PackLanes16(nil)))
	})
}
