package media

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindForContentType(t *testing.T) {
	k, err := KindForContentType("image/png")
	require.NoError(t, err)
	assert.Equal(t, KindImage, k)

	k, err = KindForContentType(" Audio/Webm ")
	require.NoError(t, err)
	assert.Equal(t, KindAudio, k)

	_, err = KindForContentType("video/mp4")
	assert.ErrorIs(t, err, ErrUnsupported)
}

func TestUploadKey(t *testing.T) {
	assert.Equal(t, "nearby/chat/alice/img_1", Upload{Folder: "nearby/chat/alice/", PublicID: "img_1"}.Key())
}
