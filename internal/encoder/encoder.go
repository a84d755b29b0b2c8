// Package encoder превращает числа из счётчика в короткие алфавитно-цифровые алиасы.
//
// Кодирование построено на sqids: одно и то же число всегда даёт одну и ту же строку,
// разные числа дают разные строки, поэтому проверка уникальности сгенерированного
// алиаса не нужна.
package encoder

import (
	"fmt"

	"github.com/sqids/sqids-go"
)

// DefaultMinLength минимальная длина алиаса по умолчанию
const DefaultMinLength = 6

// Encoder кодирует неотрицательные числа в алиасы
type Encoder struct {
	sqids     *sqids.Sqids
	minLength uint8
}

// New создает кодировщик с минимальной длиной алиаса minLength.
// Если minLength == 0, используется DefaultMinLength.
func New(minLength uint8) (*Encoder, error) {
	if minLength == 0 {
		minLength = DefaultMinLength
	}

	s, err := sqids.New(sqids.Options{MinLength: minLength})
	if err != nil {
		return nil, fmt.Errorf("не удалось создать sqids: %w", err)
	}

	return &Encoder{sqids: s, minLength: minLength}, nil
}

// Encode возвращает алиас для числа n
func (e *Encoder) Encode(n uint64) (string, error) {
	alias, err := e.sqids.Encode([]uint64{n})
	if err != nil {
		return "", fmt.Errorf("encode %d: %w", n, err)
	}
	return alias, nil
}

// Decode восстанавливает число по алиасу. Нужен для отладки.
// Возвращает false, если строка не была получена через Encode.
func (e *Encoder) Decode(alias string) (uint64, bool) {
	numbers := e.sqids.Decode(alias)
	if len(numbers) != 1 {
		return 0, false
	}

	// sqids декодирует и "чужие" строки, поэтому сверяем обратным кодированием
	canonical, err := e.Encode(numbers[0])
	if err != nil || canonical != alias {
		return 0, false
	}
	return numbers[0], true
}

// MinLength минимальная длина выдаваемых алиасов
func (e *Encoder) MinLength() int {
	return int(e.minLength)
}
