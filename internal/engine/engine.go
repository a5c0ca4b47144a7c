package engine

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ivlev/receiptwarp/internal/config"
	"github.com/ivlev/receiptwarp/internal/detect"
	"github.com/ivlev/receiptwarp/internal/geometry"
	"github.com/ivlev/receiptwarp/internal/journal"
	"github.com/ivlev/receiptwarp/internal/overlay"
	"github.com/ivlev/receiptwarp/internal/source"
	"github.com/ivlev/receiptwarp/internal/system"
	"github.com/ivlev/receiptwarp/internal/warp"
)

// Pipeline — пакетная обработка чеков: детекция контура, перспективная
// коррекция, сохранение результата и журнала.
type Pipeline struct {
	Config   *config.Config
	Source   source.Source
	Detector detect.Detector
	Journal  *journal.Journal

	mu sync.Mutex // защищает Journal при параллельной записи
}

func NewPipeline(cfg *config.Config, src source.Source, det detect.Detector, j *journal.Journal) *Pipeline {
	if j == nil {
		j = journal.New()
	}
	return &Pipeline{
		Config:   cfg,
		Source:   src,
		Detector: det,
		Journal:  j,
	}
}

func (p *Pipeline) Run(ctx context.Context) error {
	startTime := time.Now()

	count := p.Source.Count()
	if count == 0 {
		return fmt.Errorf("источник не содержит изображений/страниц")
	}

	if err := os.MkdirAll(p.Config.OutputDir, 0755); err != nil {
		return err
	}

	fmt.Println("--- [RECEIPTWARP: BATCH] ---")
	fmt.Printf("[*] Источник: %s | Кадров/Страниц: %d\n", p.Config.InputPath, count)
	fmt.Printf("[*] Детектор: %s | Воркеров: %d\n", p.Config.DetectorVariant, p.Config.Workers)
	fmt.Println("----------------------------")

	results := make([]string, count)

	workers := p.Config.Workers
	if workers > count {
		workers = count
	}
	if workers < 1 {
		workers = 1
	}

	jobs := make(chan int)
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(jobs)
		for i := 0; i < count; i++ {
			select {
			case jobs <- i:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})

	for w := 0; w < workers; w++ {
		g.Go(func() error {
			for i := range jobs {
				outPath, err := p.processOne(gctx, i)
				if err != nil {
					if errors.Is(err, context.Canceled) {
						return err
					}
					// Не останавливаем всю партию из-за одного кадра
					log.Printf("[!] Ошибка обработки %s: %v", p.Source.Name(i), err)
					continue
				}
				results[i] = outPath
				fmt.Printf("[>] Готово: %s\n", filepath.Base(outPath))
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	var failed []string
	for i, r := range results {
		if r == "" {
			failed = append(failed, p.Source.Name(i))
		}
	}
	if len(failed) > 0 {
		return fmt.Errorf("не обработаны: %s", strings.Join(failed, ", "))
	}

	if p.Config.SaveJournal != "" {
		if err := journal.Write(p.Journal, p.Config.SaveJournal); err != nil {
			return fmt.Errorf("ошибка записи журнала: %v", err)
		}
		fmt.Printf("[*] Журнал сохранен: %s\n", p.Config.SaveJournal)
	}

	if p.Config.ShowStats {
		p.printStats(count, time.Since(startTime))
	}

	return nil
}

// processOne обрабатывает один кадр: контур берется из журнала (повтор
// проверенной коррекции) либо от детектора; при отсутствии детекции
// используется стандартная рамка с отступом.
func (p *Pipeline) processOne(ctx context.Context, index int) (string, error) {
	img, err := p.Source.Load(index)
	if err != nil {
		return "", err
	}

	name := p.Source.Name(index)
	b := img.Bounds()
	w, h := float64(b.Dx()), float64(b.Dy())

	var quad geometry.Quad
	confidence := 0.0

	if entry := p.findEntry(name); entry != nil {
		quad, err = entry.Quad()
		if err != nil {
			return "", err
		}
		confidence = entry.Confidence
	} else {
		// Детекция на уменьшенной копии: контур нормализован и не зависит
		// от разрешения.
		thumb := overlay.Thumbnail(img, p.Config.DetectMaxSide)
		det, err := p.Detector.Detect(thumb)
		if err != nil {
			return "", err
		}
		if det != nil {
			confidence = det.Confidence
		}
		// Контейнер совпадает с размером изображения, поэтому координаты
		// рамки сразу в пиксельном пространстве оригинала.
		quad, _ = detect.SeedInset(det, w, h, w/h, p.Config.InsetRatio)
	}

	corrected, err := warp.Correct(ctx, img, quad)
	if err != nil {
		if errors.Is(err, geometry.ErrDegenerateQuad) {
			// Вырожденный контур: сохраняем оригинал вместо мусорного кадра
			log.Printf("[!] Вырожденный контур для %s, используется оригинал", name)
			return p.saveOriginal(img, name)
		}
		return "", err
	}
	defer warp.PutBuffer(corrected)

	outPath := filepath.Join(p.Config.OutputDir, name+"_corrected.png")
	if err := savePNG(corrected, outPath); err != nil {
		return "", err
	}

	if p.Config.Sheets {
		payload := ""
		if p.Config.QRStamp {
			payload = name
		}
		sheet, err := overlay.CompareSheet(img, quad, corrected, payload)
		if err != nil {
			return "", err
		}
		sheetPath := filepath.Join(p.Config.OutputDir, name+"_sheet.png")
		if err := savePNG(sheet, sheetPath); err != nil {
			return "", err
		}
	}

	p.mu.Lock()
	p.Journal.Add(journal.NewEntry(name, quad, confidence, true))
	p.mu.Unlock()

	return outPath, nil
}

func (p *Pipeline) findEntry(name string) *journal.Entry {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.Journal.Find(name)
}

func (p *Pipeline) saveOriginal(img image.Image, name string) (string, error) {
	outPath := filepath.Join(p.Config.OutputDir, name+"_corrected.png")
	return outPath, savePNG(img, outPath)
}

func (p *Pipeline) printStats(count int, total time.Duration) {
	perSec := float64(count) / total.Seconds()

	report := fmt.Sprintf(
		"--- [PERFORMANCE REPORT] ---\n"+
			"Build: %s\n"+
			"Total Time: %.2fs\n"+
			"Frames: %d\n"+
			"Frames/sec: %.2f\n",
		p.Config.BuildVersion, total.Seconds(), count, perSec,
	)

	if rss, err := system.ProcessRSS(); err == nil {
		report += fmt.Sprintf("RSS: %.1f MB\n", rss)
	}
	report += "----------------------------\n"
	fmt.Print(report)
}

func savePNG(img image.Image, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, img)
}
