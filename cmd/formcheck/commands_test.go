package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"horizonte-forms/internal/service"
)

func runCmd(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)

	err := cmd.Execute()
	return stdout.String(), err
}

func TestValidateCommand(t *testing.T) {
	t.Run("valid cpf", func(t *testing.T) {
		out, err := runCmd(t, "", "validate", "cpf", "529.982.247-25")
		require.NoError(t, err)
		assert.Equal(t, "✓ CPF válido\n", out)
	})

	t.Run("invalid cnpj", func(t *testing.T) {
		out, err := runCmd(t, "", "validate", "cnpj", "11.222.333/0001-82")
		require.ErrorIs(t, err, errInvalidValue)
		assert.True(t, strings.HasPrefix(out, "✗ "))
	})

	t.Run("unknown kind", func(t *testing.T) {
		_, err := runCmd(t, "", "validate", "passport", "X1")
		require.Error(t, err)
		assert.NotErrorIs(t, err, errInvalidValue)
		assert.Contains(t, err.Error(), "available:")
	})

	t.Run("rejects unknown output format", func(t *testing.T) {
		_, err := runCmd(t, "", "--output", "yaml", "validate", "cpf", "1")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "--output")
	})
}

func TestMaskCommand(t *testing.T) {
	out, err := runCmd(t, "", "mask", "taxid", "11222333000181")
	require.NoError(t, err)
	assert.Equal(t, "11.222.333/0001-81\n", out)
}

func TestPasswordCommandReadsStdin(t *testing.T) {
	out, err := runCmd(t, "abc\n", "-o", "json", "password")
	require.NoError(t, err)

	var output service.PasswordStrengthOutput
	require.NoError(t, json.Unmarshal([]byte(out), &output))
	assert.Equal(t, 1, output.Level)
	assert.Equal(t, "Fraca", output.Label)
}

func TestCEPCommand(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ws/50030230/json/":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"cep":"50030-230","logradouro":"Rua do Bom Jesus","bairro":"Recife","localidade":"Recife","uf":"PE"}`))
		default:
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"erro":true}`))
		}
	}))
	t.Cleanup(server.Close)

	out, err := runCmd(t, "", "--cep-base-url", server.URL+"/ws/", "cep", "50030-230")
	require.NoError(t, err)
	assert.Equal(t, "Rua do Bom Jesus, Recife - Recife/PE (50030-230)\n", out)

	out, err = runCmd(t, "", "--cep-base-url", server.URL+"/ws/", "cep", "99999999")
	require.ErrorIs(t, err, errInvalidValue)
	assert.Equal(t, "✗ CEP não encontrado\n", out)
}

func TestLiveCommandValidatesSettledValue(t *testing.T) {
	stdin := "5\n529.98\n529.982.247-2\n529.982.247-25\n"

	out, err := runCmd(t, stdin, "--debounce", "1h", "live", "cpf")
	require.NoError(t, err)
	assert.Equal(t, "✓ 529.982.247-25: CPF válido\n", out)
}

func TestLiveCommandRejectsUnknownKind(t *testing.T) {
	_, err := runCmd(t, "", "live", "passport")
	require.Error(t, err)
}
