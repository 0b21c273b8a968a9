package sheets

import (
	"encoding/csv"
	"fmt"
	"os"
)

// WriteCSV grava a matriz de preços em um arquivo CSV local. Usado
// nas execuções dry-run no lugar da planilha.
func WriteCSV(path string, vals [][]interface{}) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("erro ao criar CSV: %v", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	for _, row := range vals {
		record := make([]string, len(row))
		for i, cell := range row {
			if cell != nil {
				record[i] = fmt.Sprint(cell)
			}
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("erro ao escrever CSV: %v", err)
		}
	}
	w.Flush()
	return w.Error()
}
