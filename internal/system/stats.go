package system

import (
	"os"

	"github.com/shirou/gopsutil/v3/process"
)

// ProcessRSS возвращает текущее потребление памяти процессом (RSS, МБ).
// Используется в отчете производительности пакетной обработки.
func ProcessRSS() (float64, error) {
	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return 0, err
	}

	mi, err := p.MemoryInfo()
	if err != nil {
		return 0, err
	}

	return float64(mi.RSS) / 1024.0 / 1024.0, nil
}
