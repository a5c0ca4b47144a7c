package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"

	"github.com/ivlev/receiptwarp/internal/config"
	"github.com/ivlev/receiptwarp/internal/detect"
	"github.com/ivlev/receiptwarp/internal/engine"
	"github.com/ivlev/receiptwarp/internal/journal"
	"github.com/ivlev/receiptwarp/internal/source"
	"github.com/ivlev/receiptwarp/internal/system"
)

var buildVersion = "dev"

func main() {
	// Увеличиваем лимиты системы (для macOS/Linux)
	system.InitResourceLimits()

	// Создаем нужные директории, если их нет
	dirs := []string{"input/receipts", "output"}
	for _, d := range dirs {
		os.MkdirAll(d, 0755)
	}

	inputPtr := flag.String("input", "", "Путь к фото чека, папке с фото или PDF (по умолчанию: самый свежий файл в input/receipts/)")
	outputPtr := flag.String("output", "output", "Папка для исправленных изображений")
	detectorPtr := flag.String("detector", "edge", "Вариант детектора контура: edge, ml")
	insetPtr := flag.Float64("inset", detect.DefaultInset, "Отступ стандартной рамки при отсутствии детекции (доля стороны)")
	maxSidePtr := flag.Int("max-side", 640, "Максимальная сторона уменьшенной копии для детекции")
	journalPtr := flag.String("journal", "", "Путь к журналу проверенных коррекций (повтор углов вместо детекции)")
	saveJournalPtr := flag.String("save-journal", "", "Сохранить журнал коррекций в файл")
	sheetsPtr := flag.Bool("sheets", false, "Создавать листы сравнения оригинал/результат")
	qrPtr := flag.Bool("qr", false, "Добавлять QR-метку с именем кадра на лист сравнения")
	workersPtr := flag.Int("workers", runtime.NumCPU(), "Потоки")
	dpiPtr := flag.Int("dpi", 300, "DPI рендеринга PDF")
	statsPtr := flag.Bool("stats", false, "Показать статистику после обработки")

	flag.Parse()

	inputPath := *inputPtr
	if inputPath == "" {
		latest, err := system.FindLatestImage("input/receipts")
		if err != nil {
			latest, err = system.FindLatestPDF("input/receipts")
		}
		if err != nil {
			log.Fatalf("[-] Ошибка: %v. Положите фото чека в input/receipts/", err)
		}
		inputPath = latest
		fmt.Printf("[*] Выбран файл: %s\n", inputPath)
	}

	var src source.Source
	var err error

	if strings.HasSuffix(strings.ToLower(inputPath), ".pdf") {
		src, err = source.NewFitzPDFSource(inputPath, *dpiPtr)
	} else {
		src, err = source.NewImageSource(inputPath)
	}

	if err != nil {
		log.Fatalf("[-] Ошибка инициализации источника: %v", err)
	}
	defer src.Close()

	det, err := detect.NewDetector(*detectorPtr)
	if err != nil {
		log.Fatalf("[-] Ошибка детектора: %v", err)
	}

	var j *journal.Journal
	if *journalPtr != "" {
		j, err = journal.Read(*journalPtr)
		if err != nil {
			log.Fatalf("[-] Ошибка чтения журнала: %v", err)
		}
		fmt.Printf("[*] Журнал загружен: %s (%d записей)\n", *journalPtr, len(j.Entries))
	}

	cfg := &config.Config{
		InputPath:       inputPath,
		OutputDir:       *outputPtr,
		DetectorVariant: *detectorPtr,
		InsetRatio:      *insetPtr,
		DetectMaxSide:   *maxSidePtr,
		JournalPath:     *journalPtr,
		SaveJournal:     *saveJournalPtr,
		Sheets:          *sheetsPtr,
		QRStamp:         *qrPtr,
		Workers:         *workersPtr,
		DPI:             *dpiPtr,
		ShowStats:       *statsPtr,
		BuildVersion:    buildVersion,
	}

	// Ctrl+C останавливает партию, уже сохраненные кадры остаются
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	p := engine.NewPipeline(cfg, src, det, j)
	if err := p.Run(ctx); err != nil {
		log.Fatalf("[-] Ошибка обработки: %v", err)
	}

	fmt.Printf("[+++] Успех! Результаты в %s\n", cfg.OutputDir)
}
