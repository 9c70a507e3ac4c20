package classpatch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArgumentWords(t *testing.T) {
	tests := []struct {
		desc      string
		words     []int
		void      bool
		malformed bool
	}{
		{desc: "()V", void: true},
		{desc: "(I)V", words: []int{1}, void: true},
		{desc: "(JD)I", words: []int{2, 2}},
		{desc: "([J[[Ljava/lang/Object;Z)V", words: []int{1, 1, 1}, void: true},
		{desc: "(Ljava/lang/String;J)Ljava/lang/String;", words: []int{1, 2}},
		{desc: "I", malformed: true},
		{desc: "(Ljava/lang/String", malformed: true},
		{desc: "(Q)V", malformed: true},
		{desc: "(I", malformed: true},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			words, void, ok := argumentWords(tt.desc)
			if tt.malformed {
				assert.False(t, ok)
				return
			}
			require.True(t, ok)
			assert.Equal(t, tt.words, words)
			assert.Equal(t, tt.void, void)
		})
	}
}

func TestDiscard(t *testing.T) {
	seq, ok := discard(nil, 3)
	require.True(t, ok)
	assert.Empty(t, seq)

	seq, ok = discard([]int{1, 1, 1}, 3)
	require.True(t, ok)
	assert.Equal(t, []byte{opPop2, opPop}, seq)

	seq, ok = discard([]int{2, 1}, 3)
	require.True(t, ok)
	assert.Equal(t, []byte{opPop, opPop2}, seq)

	_, ok = discard([]int{2, 2, 2, 2}, 3)
	assert.False(t, ok)
}

func TestInstructionLength_Switches(t *testing.T) {
	// lookupswitch at pc 0: three bytes of padding, default, npairs=1, one pair.
	lookup := []byte{opLookupswitch, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 1, 0, 0, 0, 0, 0, 0, 0, 0}
	n, err := instructionLength(lookup, 0)
	require.NoError(t, err)
	assert.Equal(t, 1+3+8+8, n)

	n, err = instructionLength([]byte{opWide, opIinc, 0, 1, 0, 1}, 0)
	require.NoError(t, err)
	assert.Equal(t, 6, n)

	n, err = instructionLength([]byte{opWide, 0x15, 0, 1}, 0)
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	_, err = instructionLength([]byte{opTableswitch, 0, 0, 0}, 0)
	assert.Error(t, err)
}
