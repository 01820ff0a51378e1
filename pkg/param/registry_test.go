package param

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_Register(t *testing.T) {
	tests := []struct {
		name    string
		spec    Spec
		wantErr error
	}{
		{
			name:    "single string",
			spec:    Spec{Name: OutputFile, Type: TypeString, Multiplicity: Single, Default: "out.root"},
			wantErr: nil,
		},
		{
			name:    "single float from int default",
			spec:    Spec{Name: JetPtMin, Type: TypeFloat, Multiplicity: Single, Default: 20},
			wantErr: nil,
		},
		{
			name:    "list with nil default",
			spec:    Spec{Name: InputFiles, Type: TypeString, Multiplicity: List},
			wantErr: nil,
		},
		{
			name:    "empty name",
			spec:    Spec{Type: TypeString, Multiplicity: Single, Default: ""},
			wantErr: ErrInvalidSpec,
		},
		{
			name:    "unsupported type",
			spec:    Spec{Name: "x", Type: "complex", Multiplicity: Single, Default: ""},
			wantErr: ErrInvalidSpec,
		},
		{
			name:    "unsupported multiplicity",
			spec:    Spec{Name: "x", Type: TypeInt, Multiplicity: "many", Default: 1},
			wantErr: ErrInvalidSpec,
		},
		{
			name:    "int default is a string",
			spec:    Spec{Name: MaxEvents, Type: TypeInt, Multiplicity: Single, Default: "1000"},
			wantErr: ErrInvalidDefault,
		},
		{
			name:    "int default is a float",
			spec:    Spec{Name: MaxEvents, Type: TypeInt, Multiplicity: Single, Default: 1.5},
			wantErr: ErrInvalidDefault,
		},
		{
			name:    "single default missing",
			spec:    Spec{Name: ModelPath, Type: TypeString, Multiplicity: Single},
			wantErr: ErrInvalidDefault,
		},
		{
			name:    "list default is a scalar",
			spec:    Spec{Name: InputFiles, Type: TypeString, Multiplicity: List, Default: "a.root"},
			wantErr: ErrInvalidDefault,
		},
		{
			name:    "list default has wrong element type",
			spec:    Spec{Name: InputFiles, Type: TypeString, Multiplicity: List, Default: []any{"a", 1}},
			wantErr: ErrInvalidDefault,
		},
		{
			name:    "default outside choices",
			spec:    Spec{Name: LogThreshold, Type: TypeString, Multiplicity: Single, Default: "LOUD", Choices: []string{"INFO", "DEBUG"}},
			wantErr: ErrInvalidDefault,
		},
		{
			name:    "choices on int parameter",
			spec:    Spec{Name: ReportEvery, Type: TypeInt, Multiplicity: Single, Default: 1, Choices: []string{"1"}},
			wantErr: ErrInvalidSpec,
		},
		{
			name:    "default exceeds max items",
			spec:    Spec{Name: InputFiles, Type: TypeString, Multiplicity: List, Default: []string{"a", "b"}, MaxItems: 1},
			wantErr: ErrInvalidDefault,
		},
		{
			name:    "max items on single parameter",
			spec:    Spec{Name: OutputFile, Type: TypeString, Multiplicity: Single, Default: "x", MaxItems: 2},
			wantErr: ErrInvalidSpec,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := NewRegistry()
			err := reg.Register(tt.spec)
			if tt.wantErr == nil {
				require.NoError(t, err)
				assert.Equal(t, 1, reg.Len())
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
			assert.Equal(t, 0, reg.Len())
		})
	}
}

func TestRegistry_DuplicateName(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(Spec{Name: MaxEvents, Type: TypeInt, Multiplicity: Single, Default: 1000}))

	err := reg.Register(Spec{Name: MaxEvents, Type: TypeInt, Multiplicity: Single, Default: 10})
	require.Error(t, err)
	assert.True(t, IsDuplicateName(err))

	var perr *Error
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, MaxEvents, perr.Name)

	// The original registration is untouched.
	spec, err := reg.Lookup(MaxEvents)
	require.NoError(t, err)
	assert.Equal(t, 1000, spec.Default)
}

func TestRegistry_Lookup(t *testing.T) {
	reg := NewRegistry()
	reg.MustRegister(
		Spec{Name: InputFiles, Type: TypeString, Multiplicity: List, Default: []string{"a.root"}, Description: "Input files"},
		Spec{Name: JetPtMin, Type: TypeFloat, Multiplicity: Single, Default: 20},
	)

	t.Run("normalizes defaults", func(t *testing.T) {
		spec, err := reg.Lookup(JetPtMin)
		require.NoError(t, err)
		assert.Equal(t, 20.0, spec.Default)
	})

	t.Run("returns copies", func(t *testing.T) {
		spec, err := reg.Lookup(InputFiles)
		require.NoError(t, err)
		files := spec.Default.([]string)
		files[0] = "mutated"

		again, err := reg.Lookup(InputFiles)
		require.NoError(t, err)
		assert.Equal(t, []string{"a.root"}, again.Default)
	})

	t.Run("unknown name", func(t *testing.T) {
		_, err := reg.Lookup("nope")
		require.Error(t, err)
		assert.True(t, IsUnknownParameter(err))
	})
}

func TestRegistry_OrderPreserved(t *testing.T) {
	reg := NewRegistry()
	reg.MustRegister(
		Spec{Name: OutputFile, Type: TypeString, Multiplicity: Single, Default: "o"},
		Spec{Name: InputFiles, Type: TypeString, Multiplicity: List},
		Spec{Name: MaxEvents, Type: TypeInt, Multiplicity: Single, Default: -1},
	)

	assert.Equal(t, []Name{OutputFile, InputFiles, MaxEvents}, reg.Names())

	specs := reg.Specs()
	require.Len(t, specs, 3)
	assert.Equal(t, "list<string>", specs[1].TypeLabel())
	assert.Equal(t, []string{}, specs[1].Default)
}

func TestRegistry_MustRegisterPanics(t *testing.T) {
	reg := NewRegistry()
	assert.Panics(t, func() {
		reg.MustRegister(Spec{Name: MaxEvents, Type: TypeInt, Multiplicity: Single, Default: "ten"})
	})
}
