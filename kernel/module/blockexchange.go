package module

import (
	"petos/kernel"
	"petos/kernel/object"
)

// sectorSize is the fixed block size the exchange task buffers a sector
// into, matching the teacher's blk_exchange use of a 512-byte KernelBuf.
const sectorSize = 512

// BlockRequest is the sector-granular unit of work a block exchange task
// issues to the underlying block device queue, translated from the
// file-shaped FileRequest a block module's public queue actually carries.
// The device driver draining deviceQueue (ATA PIO glue, reconstructible
// per SPEC_FULL.md §6 and not implemented in this tree) completes it by
// calling Complete, which is what wakes the exchange task blocked in Wait —
// the same request/completion-event pairing FileWork gives the public
// queue, one level down.
type BlockRequest struct {
	Sector uint32
	Buf    *object.KernelBuf

	done   *object.Event
	status kernel.ErrorKind
}

func newBlockRequest(sector uint32, buf *object.KernelBuf) *BlockRequest {
	return &BlockRequest{Sector: sector, Buf: buf, done: object.NewEvent()}
}

// Complete records the device's result and wakes whatever exchange task is
// blocked in Wait.
func (r *BlockRequest) Complete(status kernel.ErrorKind) {
	r.status = status
	r.done.Set()
}

// Wait blocks until Complete has been called and returns its status.
func (r *BlockRequest) Wait() kernel.ErrorKind {
	r.done.Wait()
	return r.status
}

// blockExchange holds the per-module state a block-device's exchange task
// needs: the device-facing queue it pushes BlockRequests to, and the
// single reusable sector buffer the teacher's BlkFile context wraps.
type blockExchange struct {
	deviceQueue *object.Queue[*BlockRequest]
	sector      uint32
	sectorBuf   *object.KernelBuf
}

// spawnBlockExchange wires a freshly registered block Module to a
// device-facing queue and seeds its sector-buffering state. The exchange
// task itself (the loop translating FileRequests drained from m.Queue into
// BlockRequests) is run via RunBlockExchange once the caller's task
// machinery is ready to host it; spawning a kernel task to host that loop
// automatically is architecture/scheduler glue out of scope here.
func spawnBlockExchange(m *Module, capacity int) *kernel.Error {
	m.exchange = &blockExchange{
		deviceQueue: object.NewBoundedQueue[*BlockRequest](capacity),
		sectorBuf:   object.NewKernelBuf(sectorSize),
	}
	return nil
}

// RunBlockExchange drains m.Queue, translating each FileWork's FileRequest
// into one BlockRequest against the underlying device queue, waiting for
// the device to complete it, and delivering a FileResponse back through
// the originating FileWork. Grounded directly on
// original_source/kernel/src/drivers/module_info.rs's blk_exchange: the
// current sector always advances by one after the wait, regardless of
// whether the device reported success, and a Read only copies the sector
// buffer back into the caller's buffer on success.
func RunBlockExchange(m *Module) {
	xchg := m.exchange
	if xchg == nil {
		return
	}

	for {
		work := m.Queue.BlockingPop()
		req := work.Request

		switch req.Op {
		case FileOpCommand:
			blk := newBlockRequest(xchg.sector, xchg.sectorBuf)
			xchg.deviceQueue.Push(blk)
			status := blk.Wait()
			xchg.sector++

			work.SendResponse(FileResponse{Status: status})

		case FileOpRead:
			blk := newBlockRequest(xchg.sector, xchg.sectorBuf)
			xchg.deviceQueue.Push(blk)
			status := blk.Wait()
			xchg.sector++

			if status == kernel.ErrNone {
				copy(resolveKernelBuf(req.Buf).Bytes(), xchg.sectorBuf.Bytes())
			}
			work.SendResponse(FileResponse{Status: status})

		case FileOpWrite:
			copy(xchg.sectorBuf.Bytes(), resolveKernelBuf(req.Buf).Bytes())

			blk := newBlockRequest(xchg.sector, xchg.sectorBuf)
			xchg.deviceQueue.Push(blk)
			status := blk.Wait()
			xchg.sector++

			work.SendResponse(FileResponse{Status: status})
		}
	}
}
