package warp

import (
	"image"
	"sync"
)

// bufferPool предоставляет механизмы повторного использования image.RGBA
// для снижения нагрузки на Garbage Collector (GC) при пакетной обработке.
type bufferPool struct {
	pools map[string]*sync.Pool
	mu    sync.RWMutex
}

var globalPool = &bufferPool{
	pools: make(map[string]*sync.Pool),
}

// GetBuffer возвращает экземпляр *image.RGBA из пула или создает новый,
// если в пуле нет подходящего по размеру объекта.
func GetBuffer(rect image.Rectangle) *image.RGBA {
	return globalPool.get(rect)
}

// PutBuffer возвращает экземпляр *image.RGBA в пул для повторного
// использования. Вызывается после кодирования результата на диск.
func PutBuffer(img *image.RGBA) {
	globalPool.put(img)
}

func (p *bufferPool) get(rect image.Rectangle) *image.RGBA {
	key := rect.String()
	p.mu.RLock()
	pool, exists := p.pools[key]
	p.mu.RUnlock()

	if !exists {
		p.mu.Lock()
		// Double check
		pool, exists = p.pools[key]
		if !exists {
			pool = &sync.Pool{
				New: func() interface{} {
					return image.NewRGBA(rect)
				},
			}
			p.pools[key] = pool
		}
		p.mu.Unlock()
	}

	return pool.Get().(*image.RGBA)
}

func (p *bufferPool) put(img *image.RGBA) {
	if img == nil {
		return
	}
	key := img.Rect.String()
	p.mu.RLock()
	pool, exists := p.pools[key]
	p.mu.RUnlock()

	if exists {
		pool.Put(img)
	}
}
