package classpatch_test

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/anvil/internal/core/domain"
	"go.trai.ch/anvil/internal/engine/classpatch"
)

// Offsets inside a built class: 12 bytes of class header after the pool, 22 bytes
// of method header before the bytecode of the first method.
const firstCodeFromPoolEnd = 12 + 22

type installerFixture struct {
	class     []byte
	poolEnd   int
	mainCode  int
	poolCount uint16
	clientRef uint16
}

// newInstallerFixture builds a class whose main reads Actions.SERVER, calls
// System.exit(0) and then launchGui(). A helper method repeats the exit call.
func newInstallerFixture(withClientField bool) installerFixture {
	b := newClassBuilder()
	actions := b.class(actionsClass)
	desc := b.utf8(actionsDesc)
	server := b.fieldrefOn(actions, "SERVER", desc)
	var client uint16
	if withClientField {
		client = b.fieldrefOn(actions, "CLIENT", desc)
	}
	exit := b.methodref("java/lang/System", "exit", "(I)V")
	gui := b.methodref(installerClass, "launchGui", "()V")

	b.method("main", "([Ljava/lang/String;)V", code(
		withIndex(0xb2, server), // getstatic Actions.SERVER
		op(0x4c),                // astore_1
		op(0x03),                // iconst_0
		withIndex(0xb8, exit),   // invokestatic System.exit
		op(0x2a),                // aload_0
		withIndex(0xb7, gui),    // invokespecial launchGui
		op(0xb1),                // return
	))
	b.method("helper", "()V", code(
		op(0x03),
		withIndex(0xb8, exit),
		op(0xb1),
	))

	return installerFixture{
		class:     b.bytes(),
		poolEnd:   b.poolEnd(),
		mainCode:  b.poolEnd() + firstCodeFromPoolEnd,
		poolCount: b.next,
		clientRef: client,
	}
}

func TestPatch_AlwaysOnRules(t *testing.T) {
	f := newInstallerFixture(false)
	original := bytes.Clone(f.class)

	out, report, err := classpatch.Patch(f.class, classpatch.Options{})
	require.NoError(t, err)
	assert.Equal(t, original, f.class, "input must not be modified")
	require.Len(t, out, len(f.class))

	main := out[f.mainCode : f.mainCode+13]
	assert.Equal(t, f.class[f.mainCode:f.mainCode+5], main[0:5], "getstatic SERVER is kept")
	assert.Equal(t, []byte{0x00, 0x00, 0x57}, main[5:8], "exit call becomes a pop")
	assert.Equal(t, byte(0x2a), main[8])
	assert.Equal(t, []byte{0x00, 0x57, 0xb1}, main[9:12], "launchGui becomes pop and return")
	assert.Equal(t, byte(0xb1), main[12])

	assert.Equal(t, f.class[:f.mainCode+5], out[:f.mainCode+5])
	assert.Equal(t, f.class[f.mainCode+13:], out[f.mainCode+13:], "helper method is untouched")

	assert.True(t, report.Applied(classpatch.RuleSkipExit))
	assert.True(t, report.Applied(classpatch.RuleSkipGui))
	assert.False(t, report.Applied(classpatch.RuleServerMeansClient))
	assert.Empty(t, report.Missed)
	require.Len(t, report.Edits, 2)
	assert.Equal(t, classpatch.Edit{Rule: classpatch.RuleSkipExit, Method: "main([Ljava/lang/String;)V", Offset: 5}, report.Edits[0])
	assert.Equal(t, 9, report.Edits[1].Offset)
}

func TestPatch_ServerMeansClient_ReusesExistingField(t *testing.T) {
	f := newInstallerFixture(true)

	out, report, err := classpatch.Patch(f.class, classpatch.Options{ServerMeansClient: true})
	require.NoError(t, err)
	require.Len(t, out, len(f.class), "no constants are appended")

	assert.Equal(t, byte(0xb2), out[f.mainCode])
	assert.Equal(t, f.clientRef, binary.BigEndian.Uint16(out[f.mainCode+1:]))
	assert.True(t, report.Applied(classpatch.RuleServerMeansClient))

	for i := range out {
		if i >= f.mainCode && i < f.mainCode+13 {
			continue
		}
		require.Equal(t, f.class[i], out[i], "byte %d outside main changed", i)
	}
}

func TestPatch_ServerMeansClient_AppendsField(t *testing.T) {
	f := newInstallerFixture(false)

	out, report, err := classpatch.Patch(f.class, classpatch.Options{ServerMeansClient: true})
	require.NoError(t, err)
	assert.True(t, report.Applied(classpatch.RuleServerMeansClient))

	// Utf8 "CLIENT", NameAndType and Fieldref are appended in that order.
	appended := len("CLIENT") + 3 + 5 + 5
	require.Len(t, out, len(f.class)+appended)
	assert.Equal(t, f.poolCount+3, binary.BigEndian.Uint16(out[8:]))

	assert.Equal(t, f.class[10:f.poolEnd], out[10:f.poolEnd], "existing constants are unchanged")
	extra := out[f.poolEnd : f.poolEnd+appended]
	assert.Equal(t, append([]byte{1, 0, 6}, "CLIENT"...), extra[:9])
	assert.Equal(t, byte(12), extra[9])
	assert.Equal(t, f.poolCount, binary.BigEndian.Uint16(extra[10:]), "NameAndType names CLIENT")
	assert.Equal(t, byte(9), extra[14])
	assert.Equal(t, f.poolCount+1, binary.BigEndian.Uint16(extra[17:]), "Fieldref uses the new NameAndType")

	mainCode := f.mainCode + appended
	assert.Equal(t, f.poolCount+2, binary.BigEndian.Uint16(out[mainCode+1:]))
}

func TestPatch_SecondPassFindsNothing(t *testing.T) {
	f := newInstallerFixture(false)
	opts := classpatch.Options{ServerMeansClient: true}

	once, _, err := classpatch.Patch(f.class, opts)
	require.NoError(t, err)

	twice, report, err := classpatch.Patch(once, opts)
	require.NoError(t, err)
	assert.Equal(t, once, twice)
	assert.Empty(t, report.Edits)
	assert.ElementsMatch(t, []string{
		classpatch.RuleServerMeansClient,
		classpatch.RuleSkipExit,
		classpatch.RuleSkipGui,
	}, report.Missed)
}

func TestPatch_MissIsNotAnError(t *testing.T) {
	b := newClassBuilder()
	b.method("main", "([Ljava/lang/String;)V", op(0xb1))
	class := b.bytes()

	out, report, err := classpatch.Patch(class, classpatch.Options{ServerMeansClient: true})
	require.NoError(t, err)
	assert.Equal(t, class, out)
	assert.Len(t, report.Missed, 3)
}

func TestPatch_DecodesAcrossSwitchesAndWideConstants(t *testing.T) {
	b := newClassBuilder()
	b.long(42)
	exit := b.methodref("java/lang/System", "exit", "(I)V")

	tableswitch := code(
		op(0xaa, 0x00, 0x00), // tableswitch at pc 1, two bytes of padding
		u2(0), u2(19),        // default
		u2(0), u2(0),         // low
		u2(0), u2(0),         // high
		u2(0), u2(19),        // offset for 0
	)
	b.method("main", "([Ljava/lang/String;)V", code(
		op(0x03),
		tableswitch,
		op(0x04),
		withIndex(0xb8, exit),
		op(0xb1),
	))
	class := b.bytes()
	mainCode := b.poolEnd() + firstCodeFromPoolEnd

	out, report, err := classpatch.Patch(class, classpatch.Options{})
	require.NoError(t, err)
	require.Len(t, report.Edits, 1)
	assert.Equal(t, 21, report.Edits[0].Offset)
	assert.Equal(t, []byte{0x00, 0x00, 0x57}, out[mainCode+21:mainCode+24])
}

func TestPatch_LaunchGuiDiscardsArguments(t *testing.T) {
	tests := []struct {
		name string
		desc string
		want []byte
	}{
		{name: "receiver only", desc: "()V", want: []byte{0x00, 0x57, 0xb1}},
		{name: "object and long", desc: "(Ljava/lang/String;J)V", want: []byte{0x58, 0x58, 0xb1}},
		{name: "too many to pop", desc: "(JJ)V", want: []byte{0x00, 0x00, 0xb1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newClassBuilder()
			gui := b.methodref(installerClass, "launchGui", tt.desc)
			b.method("main", "([Ljava/lang/String;)V", code(
				withIndex(0xb7, gui),
				op(0xb1),
			))
			class := b.bytes()
			mainCode := b.poolEnd() + firstCodeFromPoolEnd

			out, report, err := classpatch.Patch(class, classpatch.Options{})
			require.NoError(t, err)
			assert.True(t, report.Applied(classpatch.RuleSkipGui))
			assert.Equal(t, tt.want, out[mainCode:mainCode+3])
		})
	}
}

func TestPatch_IgnoresNonVoidExit(t *testing.T) {
	b := newClassBuilder()
	exit := b.methodref("com/example/Shutdown", "exit", "(I)Z")
	b.method("main", "([Ljava/lang/String;)V", code(
		op(0x03),
		withIndex(0xb8, exit),
		op(0x57),
		op(0xb1),
	))
	class := b.bytes()

	out, report, err := classpatch.Patch(class, classpatch.Options{})
	require.NoError(t, err)
	assert.Equal(t, class, out)
	assert.Contains(t, report.Missed, classpatch.RuleSkipExit)
}

func TestPatch_MalformedClass(t *testing.T) {
	valid := newInstallerFixture(false).class

	undefinedOpcode := newClassBuilder()
	undefinedOpcode.method("main", "([Ljava/lang/String;)V", op(0xcb))

	tests := []struct {
		name  string
		class []byte
	}{
		{name: "empty", class: nil},
		{name: "bad magic", class: append([]byte{0xCA, 0xFE, 0xBA, 0xBF}, valid[4:]...)},
		{name: "truncated pool", class: valid[:20]},
		{name: "truncated methods", class: valid[:len(valid)-10]},
		{name: "undefined opcode", class: undefinedOpcode.bytes()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := classpatch.Patch(tt.class, classpatch.Options{})
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrClassFormat)
		})
	}
}
