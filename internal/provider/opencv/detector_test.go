package opencv

import (
	"image"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saturnino-fabrica-de-software/presenca/internal/domain"
)

func TestNewCascadeDetector_MissingFile(t *testing.T) {
	_, err := NewCascadeDetector("testdata/does-not-exist.xml")

	assert.ErrorIs(t, err, domain.ErrDetectorUnavailable)
}

func TestCascadeDetector_BlankFrame(t *testing.T) {
	path := os.Getenv("CASCADE_PATH")
	if path == "" {
		t.Skip("CASCADE_PATH not set")
	}

	det, err := NewCascadeDetector(path)
	require.NoError(t, err)
	defer det.Close()

	faces := det.Detect(image.NewRGBA(image.Rect(0, 0, 320, 240)))
	assert.Empty(t, faces)
	assert.Empty(t, det.Detect(nil))
}
