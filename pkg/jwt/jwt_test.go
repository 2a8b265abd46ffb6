package jwt_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/ceasa-api/pkg/jwt"
)

func TestGenerateParse_RoundTrip(t *testing.T) {
	token, err := jwt.Generate("segredo", "u1", "administrador", "ceasa-api", 5)
	require.NoError(t, err)

	userID, role, err := jwt.Parse("segredo", token)
	require.NoError(t, err)
	assert.Equal(t, "u1", userID)
	assert.Equal(t, "administrador", role)
}

func TestParse_Rejects(t *testing.T) {
	valid, err := jwt.Generate("segredo", "u1", "funcionario", "ceasa-api", 5)
	require.NoError(t, err)
	expired, err := jwt.Generate("segredo", "u1", "funcionario", "ceasa-api", -1)
	require.NoError(t, err)

	cases := []struct {
		name   string
		secret string
		token  string
	}{
		{"assinatura errada", "outro", valid},
		{"expirado", "segredo", expired},
		{"malformado", "segredo", "abc.def.ghi"},
		{"secret vazio", "", valid},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := jwt.Parse(tc.secret, tc.token)
			assert.Error(t, err)
		})
	}
}

func TestGenerate_EmptySecret(t *testing.T) {
	_, err := jwt.Generate("", "u1", "funcionario", "ceasa-api", 5)
	assert.Error(t, err)
}
