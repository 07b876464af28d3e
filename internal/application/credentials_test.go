package application_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ericfisherdev/itempanel/internal/application"
	"github.com/ericfisherdev/itempanel/internal/domain/model"
)

func TestCredentialHolder_Defaults(t *testing.T) {
	holder := application.NewCredentialHolder(model.Credential{Username: "us", Password: "ps"})

	assert.Equal(t, "us", holder.Username())
	assert.Equal(t, "ps", holder.Password())
}

func TestCredentialHolder_Setters(t *testing.T) {
	holder := application.NewCredentialHolder(model.Credential{})

	holder.SetUsername("alice")
	holder.SetPassword("hunter22")

	assert.Equal(t, model.Credential{Username: "alice", Password: "hunter22"}, holder.Credential())

	holder.Set(model.Credential{Username: "bob", Password: "x"})
	assert.Equal(t, "bob", holder.Username())
	assert.Equal(t, "x", holder.Password())
}
