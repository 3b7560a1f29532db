// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package auth

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewHTTPClient(t *testing.T) {
	t.Parallel()
	tp, _ := testNewProvider(t)

	t.Run("system-ca", func(t *testing.T) {
		assert, require := assert.New(t), require.New(t)
		c, err := NewHTTPClient("")
		require.NoError(err)
		_, ok := c.Transport.(*http.Transport)
		assert.True(ok)
	})
	t.Run("provider-ca", func(t *testing.T) {
		assert, require := assert.New(t), require.New(t)
		c, err := NewHTTPClient(tp.CACert())
		require.NoError(err)
		resp, err := c.Get(tp.Addr() + "/.well-known/openid-configuration")
		require.NoError(err)
		defer resp.Body.Close()
		assert.Equal(http.StatusOK, resp.StatusCode)
	})
	t.Run("invalid-ca", func(t *testing.T) {
		assert := assert.New(t)
		_, err := NewHTTPClient("not-a-pem")
		assert.ErrorIs(err, ErrInvalidCACert)
	})
}
