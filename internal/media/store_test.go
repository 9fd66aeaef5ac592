package media

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestURLFallsBackToDefault(t *testing.T) {
	s, err := NewStore(t.TempDir(), "http://host/")
	require.NoError(t, err)

	assert.Equal(t, "http://host/media/"+DefaultProfilePicture, s.URL(nil, DefaultProfilePicture))

	empty := ""
	assert.Equal(t, "http://host/media/"+DefaultClubLogo, s.URL(&empty, DefaultClubLogo))

	rel := filepath.Join("profiles", "abc.jpg")
	assert.Equal(t, "http://host/media/profiles/abc.jpg", s.URL(&rel, DefaultProfilePicture))
}

func TestSaveBytesAndRemove(t *testing.T) {
	root := t.TempDir()
	s, err := NewStore(root, "http://host")
	require.NoError(t, err)

	rel, err := s.SaveBytes("qr", "ticket_1.png", []byte{1, 2, 3})
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(root, rel))
	require.NoError(t, err)

	s.Remove(rel)
	_, err = os.Stat(filepath.Join(root, rel))
	assert.True(t, os.IsNotExist(err))
}

func TestRemoveKeepsDefaultAssets(t *testing.T) {
	root := t.TempDir()
	s, err := NewStore(root, "http://host")
	require.NoError(t, err)

	path := filepath.Join(root, DefaultEventCover)
	require.NoError(t, os.WriteFile(path, []byte{1}, 0o644))

	s.Remove(DefaultEventCover)
	_, err = os.Stat(path)
	assert.NoError(t, err)
}
