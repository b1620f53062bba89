package models

// Municipio é o cadastro estático de um município (fonte: municipios.json do
// IBGE). O código IBGE canônico tem 7 dígitos; os arquivos de casos do
// DATASUS usam a forma legada de 6 dígitos, mapeada pelo prefixo.
type Municipio struct {
	CodigoIBGE  string   `gorm:"column:codigo_ibge;primaryKey;size:7" json:"codigo_ibge"`
	Nome        string   `gorm:"column:nome" json:"nome"`
	Latitude    *float64 `gorm:"column:latitude" json:"latitude"`
	Longitude   *float64 `gorm:"column:longitude" json:"longitude"`
	EstadoSigla string   `gorm:"column:estado_sigla;size:2" json:"estado_sigla"`
	Regiao      string   `gorm:"column:regiao" json:"regiao"`
	Populacao   *float64 `gorm:"column:populacao" json:"populacao,omitempty"`
}

func (Municipio) TableName() string {
	return "municipios"
}

// Estado é a unidade federativa (fonte: estados.json).
type Estado struct {
	CodigoUF string `gorm:"column:codigo_uf;primaryKey;size:2" json:"codigo_uf"`
	UF       string `gorm:"column:uf;size:2" json:"uf"`
	Nome     string `gorm:"column:nome" json:"nome"`
	Regiao   string `gorm:"column:regiao" json:"regiao"`
}

func (Estado) TableName() string {
	return "estados"
}
