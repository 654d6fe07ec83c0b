package cubefield

import (
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"sync"

	"github.com/google/uuid"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

type AssetId string

type TextureFormat uint32

const (
	TextureFormatRGBA8Unorm TextureFormat = 0x00000012
)

// MipLevel is one level of a texture's mip chain, tightly packed RGBA8.
type MipLevel struct {
	Width  uint32
	Height uint32
	Texels []uint8
}

type TextureAsset struct {
	// Version grows each time the texels are replaced.
	Version uint
	Source  string
	Format  TextureFormat
	Levels  []MipLevel
}

func (t *TextureAsset) Width() uint32  { return t.Levels[0].Width }
func (t *TextureAsset) Height() uint32 { return t.Levels[0].Height }

type textureResult struct {
	id     AssetId
	levels []MipLevel
	err    error
}

// AssetServer owns decoded textures. Loads run on their own goroutine and are
// published into the server by assetsSystem at the start of a tick, so
// readers never see a texture change mid-tick.
type AssetServer struct {
	mu       sync.Mutex
	textures map[AssetId]*TextureAsset
	results  chan textureResult
	done     chan struct{}
	closing  sync.Once
	loading  sync.WaitGroup
}

func NewAssetServer() *AssetServer {
	return &AssetServer{
		textures: make(map[AssetId]*TextureAsset),
		results:  make(chan textureResult, 8),
		done:     make(chan struct{}),
	}
}

type AssetServerModule struct{}

func (AssetServerModule) Install(app *App, cmd *Commands) error {
	server := NewAssetServer()
	cmd.AddResources(server)
	app.UseSystem(
		System(assetsSystem).
			InStage(Prelude),
	)
	app.UseCleanup(server.Close)
	return nil
}

func assetsSystem(server *AssetServer, cmd *Commands) {
	server.Poll(cmd.Logger())
}

func (server *AssetServer) CreateTexture(img *image.RGBA, source string) AssetId {
	id := makeAssetId()
	server.mu.Lock()
	server.textures[id] = &TextureAsset{
		Source: source,
		Format: TextureFormatRGBA8Unorm,
		Levels: GenerateMipChain(img),
	}
	server.mu.Unlock()
	return id
}

// LoadTextureAsync returns immediately with an asset holding a 1x1 blue
// placeholder. The file is decoded in the background and swapped in by a
// later Poll; on failure the placeholder stays.
func (server *AssetServer) LoadTextureAsync(path string) AssetId {
	id := server.CreateTexture(PlaceholderImage(), path)

	server.loading.Add(1)
	go func() {
		defer server.loading.Done()
		levels, err := loadTextureLevels(path)
		select {
		case server.results <- textureResult{id: id, levels: levels, err: err}:
		case <-server.done:
		}
	}()
	return id
}

// Poll publishes finished loads without blocking and returns the ids that
// changed.
func (server *AssetServer) Poll(log Logger) []AssetId {
	var changed []AssetId
	for {
		select {
		case res := <-server.results:
			if res.err != nil {
				log.Warnf("texture %s: %v, keeping placeholder", res.id, res.err)
				continue
			}
			server.mu.Lock()
			if tex, ok := server.textures[res.id]; ok {
				tex.Levels = res.levels
				tex.Version++
				log.Infof("texture %s loaded from %s (%dx%d, %d levels)",
					res.id, tex.Source, tex.Width(), tex.Height(), len(tex.Levels))
				changed = append(changed, res.id)
			}
			server.mu.Unlock()
		default:
			return changed
		}
	}
}

// Wait blocks until background loads have delivered their results. Results
// beyond the channel buffer need a concurrent Poll.
func (server *AssetServer) Wait() {
	server.loading.Wait()
}

// Close abandons undelivered loads and waits for their goroutines to exit.
func (server *AssetServer) Close() {
	server.closing.Do(func() { close(server.done) })
	server.loading.Wait()
}

func (server *AssetServer) Texture(id AssetId) (*TextureAsset, bool) {
	server.mu.Lock()
	defer server.mu.Unlock()
	tex, ok := server.textures[id]
	return tex, ok
}

func loadTextureLevels(path string) ([]MipLevel, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	img, err := DecodeImage(file)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return GenerateMipChain(img), nil
}

// DecodeImage decodes PNG, JPEG, WebP or BMP into tightly packed RGBA.
func DecodeImage(r io.Reader) (*image.RGBA, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, err
	}
	return toRGBA(img), nil
}

func toRGBA(img image.Image) *image.RGBA {
	bounds := img.Bounds()
	if rgba, ok := img.(*image.RGBA); ok && bounds.Min == (image.Point{}) && rgba.Stride == 4*bounds.Dx() {
		return rgba
	}
	rgba := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)
	return rgba
}

func PlaceholderImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 1, 1))
	img.SetRGBA(0, 0, color.RGBA{R: 0, G: 0, B: 255, A: 255})
	return img
}

// GenerateMipChain returns img followed by successively halved copies down to
// 1x1. Odd sizes round down, never below 1.
func GenerateMipChain(img *image.RGBA) []MipLevel {
	img = toRGBA(img)
	levels := []MipLevel{mipLevelOf(img)}
	for src := img; src.Bounds().Dx() > 1 || src.Bounds().Dy() > 1; {
		w := max(src.Bounds().Dx()/2, 1)
		h := max(src.Bounds().Dy()/2, 1)
		dst := image.NewRGBA(image.Rect(0, 0, w, h))
		draw.BiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
		levels = append(levels, mipLevelOf(dst))
		src = dst
	}
	return levels
}

func mipLevelOf(img *image.RGBA) MipLevel {
	return MipLevel{
		Width:  uint32(img.Bounds().Dx()),
		Height: uint32(img.Bounds().Dy()),
		Texels: img.Pix,
	}
}

func makeAssetId() AssetId {
	return AssetId(uuid.NewString())
}
