package opengl

import (
	"errors"
	"fmt"
	"unsafe"

	gl "github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"gltf-viewer/scene"
)

var ErrEmptyTexture = errors.New("opengl: texture has no pixel data")

// UploadTexture uploads a scene.Texture to the GPU and sets its GLID field.
// The GL context must be current on the calling goroutine. Already uploaded
// textures are left alone.
func UploadTexture(tex *scene.Texture) error {
	if tex == nil {
		return fmt.Errorf("%w: nil texture", ErrEmptyTexture)
	}
	if tex.Uploaded() {
		return nil
	}
	if len(tex.Pixels) == 0 || len(tex.Pixels) != tex.Width*tex.Height*4 {
		return fmt.Errorf("%w: %q (%dx%d, %d bytes)", ErrEmptyTexture, tex.Name, tex.Width, tex.Height, len(tex.Pixels))
	}

	var id uint32
	gl.GenTextures(1, &id)
	gl.BindTexture(gl.TEXTURE_2D, id)

	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.REPEAT)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.REPEAT)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR_MIPMAP_LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)

	// Rows are tightly packed RGBA8.
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.TexImage2D(
		gl.TEXTURE_2D,
		0,
		gl.SRGB8_ALPHA8,
		int32(tex.Width),
		int32(tex.Height),
		0,
		gl.RGBA,
		gl.UNSIGNED_BYTE,
		unsafe.Pointer(&tex.Pixels[0]),
	)
	gl.GenerateMipmap(gl.TEXTURE_2D)

	gl.BindTexture(gl.TEXTURE_2D, 0)

	tex.GLID = id
	return nil
}

// DeleteTexture frees a previously uploaded GPU texture and zeroes its GLID.
func DeleteTexture(tex *scene.Texture) {
	if !tex.Uploaded() {
		return
	}
	gl.DeleteTextures(1, &tex.GLID)
	tex.GLID = 0
}

// UploadTexture lets the Renderer stand in wherever a texture uploader is
// expected.
func (r *Renderer) UploadTexture(tex *scene.Texture) error {
	if err := UploadTexture(tex); err != nil {
		return err
	}
	r.log.Debug("texture uploaded", zap.String("texture", tex.Name), zap.Int("width", tex.Width), zap.Int("height", tex.Height))
	return nil
}

func (r *Renderer) DeleteTexture(tex *scene.Texture) {
	DeleteTexture(tex)
}
