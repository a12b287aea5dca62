// Package bootimg builds the fixture disk image petctl works with: an
// in-memory VFS tree (kernel/vfs) holding an embedded boot-splash bitmap
// (pkg/logoasset). The tree is not serialized into sectors; Image.Sectors
// is left empty by New. It is hosted tooling, not
// part of the freestanding kernel image, mirroring the host-side
// relationship gopher-os-gopher-os/tools/makelogo and tools/redirects have
// to that kernel: real programs that prepare assets the kernel consumes,
// built with whatever the Go ecosystem offers rather than the kernel's
// allocation-free constraints.
package bootimg

import (
	"bytes"
	"image/png"

	"petos/kernel"
	"petos/kernel/vfs"
	"petos/pkg/logoasset"
)

// SectorSize matches the kernel's block-module sector size
// (kernel/module.sectorSize).
const SectorSize = 512

// Image is an in-memory disk image: a VFS tree plus whatever raw sectors a
// block module would serve it from.
type Image struct {
	SuperBlock *vfs.SuperBlock
	Sectors    [][SectorSize]byte
}

// New builds an image with the standard fixture layout: a /boot directory
// holding the rendered splash bitmap, and an empty /data directory for
// callers to populate further.
func New() (*Image, *kernel.Error) {
	sb := vfs.NewSuperBlock(SectorSize)

	if _, err := sb.Mkdir("/boot"); err != nil {
		return nil, err
	}
	if _, err := sb.Mkdir("/data"); err != nil {
		return nil, err
	}

	splashNode, err := sb.Create("/boot/splash.png", nil)
	if err != nil {
		return nil, err
	}

	splashBytes, err := encodeSplash()
	if err != nil {
		return nil, err
	}
	if _, werr := splashNode.Write(0, splashBytes); werr != nil {
		return nil, werr
	}

	return &Image{SuperBlock: sb}, nil
}

func encodeSplash() ([]byte, *kernel.Error) {
	img := logoasset.Render(logoasset.DefaultOptions())

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, &kernel.Error{Module: "bootimg", Message: err.Error(), Kind: kernel.ErrInvalidData}
	}
	return buf.Bytes(), nil
}

// ReadFile reads the full contents of a VFS path out of the image, for
// verifying what New() built or for a caller assembling the actual raw
// image bytes written to disk.
func (img *Image) ReadFile(path string) ([]byte, *kernel.Error) {
	node, err := img.SuperBlock.Lookup(path)
	if err != nil {
		return nil, err
	}

	buf := make([]byte, 1<<20)
	n, rerr := node.Read(0, buf)
	if rerr != nil {
		return nil, rerr
	}
	return buf[:n], nil
}
