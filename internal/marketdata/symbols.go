package marketdata

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

var defaultSymbols = map[string]string{
	"ES":  "ES.FUT.CME",
	"MES": "MES.FUT.CME",
	"NQ":  "NQ.FUT.CME",
	"MNQ": "MNQ.FUT.CME",
	"RTY": "RTY.FUT.CME",
	"M2K": "M2K.FUT.CME",
	"6E":  "6E.FUT.CME",
	"6J":  "6J.FUT.CME",
	"YM":  "YM.FUT.CBOT",
	"MYM": "MYM.FUT.CBOT",
	"ZB":  "ZB.FUT.CBOT",
	"ZN":  "ZN.FUT.CBOT",
	"ZF":  "ZF.FUT.CBOT",
	"ZC":  "ZC.FUT.CBOT",
	"ZS":  "ZS.FUT.CBOT",
	"CL":  "CL.FUT.NYMEX",
	"MCL": "MCL.FUT.NYMEX",
	"NG":  "NG.FUT.NYMEX",
	"GC":  "GC.FUT.COMEX",
	"MGC": "MGC.FUT.COMEX",
	"SI":  "SI.FUT.COMEX",
}

// SymbolMap traduz códigos curtos de futuros para os contratos contínuos do provedor.
type SymbolMap struct {
	symbols map[string]string
}

type symbolsFile struct {
	Symbols map[string]string `yaml:"symbols"`
}

func NewSymbolMap(overrides map[string]string) *SymbolMap {
	symbols := make(map[string]string, len(defaultSymbols)+len(overrides))
	for k, v := range defaultSymbols {
		symbols[k] = v
	}
	for k, v := range overrides {
		symbols[strings.ToUpper(strings.TrimSpace(k))] = v
	}
	return &SymbolMap{symbols: symbols}
}

// LoadSymbolMap lê um YAML no formato `symbols: {ES: ES.FUT.CME}` sobre a tabela padrão.
// Caminho vazio retorna só a tabela padrão.
func LoadSymbolMap(path string) (*SymbolMap, error) {
	if path == "" {
		return NewSymbolMap(nil), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("erro ao ler arquivo de símbolos: %w", err)
	}

	var file symbolsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("erro ao parsear arquivo de símbolos: %w", err)
	}

	return NewSymbolMap(file.Symbols), nil
}

// Resolve devolve o símbolo do provedor; símbolos desconhecidos passam inalterados.
func (m *SymbolMap) Resolve(symbol string) string {
	if mapped, ok := m.symbols[strings.ToUpper(strings.TrimSpace(symbol))]; ok {
		return mapped
	}
	return symbol
}
