package convert

import (
	"errors"
	"fmt"

	"github.com/samcharles93/mtnkit/internal/pose"
	"github.com/samcharles93/mtnkit/pkg/mtn"
)

// ErrNoIdentity reports a document without an identity block.
var ErrNoIdentity = errors.New("motion has no identity block")

// SourcePlatform returns the public name of the platform declared in doc.
func (c *Converter) SourcePlatform(doc *mtn.Document) (string, error) {
	id := doc.Identity()
	if id == nil {
		return "", ErrNoIdentity
	}
	return c.platforms().PublicName(id.Platform.Key()), nil
}

// Identification lists which reference poses of the declared platform occur
// in a motion's keyframes.
type Identification struct {
	Platform string     `json:"platform"`
	Hits     []pose.Hit `json:"hits"`
}

// Identify matches every keyframe of doc against the catalog of its declared
// platform. A keyframe may match several poses.
func (c *Converter) Identify(doc *mtn.Document) (*Identification, error) {
	public, err := c.SourcePlatform(doc)
	if err != nil {
		return nil, err
	}
	if c.Poses == nil {
		return nil, errors.New("identify: no pose catalogs configured")
	}
	cat, err := c.Poses.Catalog(public)
	if err != nil {
		return nil, fmt.Errorf("identify: %w", err)
	}

	var frames [][]float64
	if ks := doc.Keyframes(); ks != nil {
		frames = make([][]float64, len(ks.Frames))
		for i := range ks.Frames {
			frames[i] = ks.Frames[i].Degrees()
		}
	}
	return &Identification{
		Platform: public,
		Hits:     pose.MatchAll(frames, cat, c.tolerance(), c.labels()),
	}, nil
}

// Capture turns the keyframes of doc into a pose catalog. Joint names are
// resolved for the declared platform and poses are labelled by keyframe index.
func (c *Converter) Capture(doc *mtn.Document) (*pose.Catalog, error) {
	public, err := c.SourcePlatform(doc)
	if err != nil {
		return nil, err
	}
	names := c.translator().Names(public, doc.Joints())
	var frames []mtn.Keyframe
	if ks := doc.Keyframes(); ks != nil {
		frames = ks.Frames
	}
	return pose.Capture(frames, names, c.labels()), nil
}
