// Package main реализует multichecker для статического анализа кода проекта.
//
// # Запуск
//
//	go run ./cmd/staticlint ./...
//
// Или соберите бинарный файл:
//
//	go build -o staticlint ./cmd/staticlint
//	./staticlint ./internal/...
//
// # Состав анализаторов
//
// ## 1. Стандартные анализаторы golang.org/x/tools/go/analysis/passes
//
//   - printf: корректность форматирования в fmt.Printf и zap.Sugar
//   - shadow: затенение переменных (err в errgroup и обработчиках)
//   - structtag: корректность тегов json/yaml/env/binding
//   - unusedresult: неиспользуемые результаты функций
//   - errorsas: второй аргумент errors.As должен быть указателем
//   - lostcancel: потерянный cancel из context.WithTimeout
//   - nilness: заведомо nil значения
//
// ## 2. Анализаторы класса SA из staticcheck.io
//
// Все анализаторы SA: некорректное использование стандартной библиотеки,
// ошибки конкурентности, бессмысленные операции.
//
// ## 3. Дополнительные анализаторы staticcheck.io
//
//   - ST1003: именование по соглашениям Go
//   - QF1001: упрощение логических выражений по закону де Моргана
//
// ## 4. Собственный анализатор
//
//   - noosexit: запрещает прямой вызов os.Exit в функции main пакета main
package main

import (
	"github.com/Popolzen/linkalias/internal/analyzers/noosexit"
	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/multichecker"
	"golang.org/x/tools/go/analysis/passes/errorsas"
	"golang.org/x/tools/go/analysis/passes/lostcancel"
	"golang.org/x/tools/go/analysis/passes/nilness"
	"golang.org/x/tools/go/analysis/passes/printf"
	"golang.org/x/tools/go/analysis/passes/shadow"
	"golang.org/x/tools/go/analysis/passes/structtag"
	"golang.org/x/tools/go/analysis/passes/unusedresult"
	"honnef.co/go/tools/quickfix"
	"honnef.co/go/tools/staticcheck"
	"honnef.co/go/tools/stylecheck"
)

// extraChecks анализаторы staticcheck вне класса SA
var extraChecks = map[string]bool{
	"ST1003": true,
	"QF1001": true,
}

func main() {
	checks := []*analysis.Analyzer{
		printf.Analyzer,
		shadow.Analyzer,
		structtag.Analyzer,
		unusedresult.Analyzer,
		errorsas.Analyzer,
		lostcancel.Analyzer,
		nilness.Analyzer,

		noosexit.Analyzer,
	}

	for _, v := range staticcheck.Analyzers {
		checks = append(checks, v.Analyzer)
	}
	for _, v := range stylecheck.Analyzers {
		if extraChecks[v.Analyzer.Name] {
			checks = append(checks, v.Analyzer)
		}
	}
	for _, v := range quickfix.Analyzers {
		if extraChecks[v.Analyzer.Name] {
			checks = append(checks, v.Analyzer)
		}
	}

	multichecker.Main(checks...)
}
