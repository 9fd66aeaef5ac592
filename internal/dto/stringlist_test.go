package dto

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStringListSingle(t *testing.T) {
	var s StringList
	require.NoError(t, json.Unmarshal([]byte(`"alice"`), &s))
	assert.Equal(t, StringList{"alice"}, s)
}

func TestStringListArray(t *testing.T) {
	var s StringList
	require.NoError(t, json.Unmarshal([]byte(`["alice","bob"]`), &s))
	assert.Equal(t, StringList{"alice", "bob"}, s)
}

func TestStringListRejectsNumbers(t *testing.T) {
	var s StringList
	assert.Error(t, json.Unmarshal([]byte(`42`), &s))
}
