package models

import "github.com/gloggi/ausbildung-api/internal/fields"

var GenderChoices = fields.Choices{
	{Code: "1", Label: "männlich"},
	{Code: "2", Label: "weiblich"},
}

var CountryChoices = fields.Choices{
	{Code: "CH", Label: "Schweiz"},
	{Code: "FL", Label: "Fürstentum Liechtenstein"},
	{Code: "D", Label: "Deutschland"},
	{Code: "F", Label: "Frankreich"},
	{Code: "I", Label: "Italien"},
	{Code: "A", Label: "Österreich"},
}

var FirstLanguageChoices = fields.Choices{
	{Code: "D", Label: "Deutsch"},
	{Code: "F", Label: "Französisch"},
	{Code: "I", Label: "Italienisch"},
	{Code: "E", Label: "Englisch"},
}

var RailPassChoices = fields.Choices{
	{Code: "Keines", Label: "Keines"},
	{Code: "GA", Label: "GA"},
	{Code: "Halbtax", Label: "Halbtax"},
	{Code: "Regenbogen", Label: "Regenbogen"},
	{Code: "Gleis 7", Label: "Gleis 7"},
}

var LevelChoices = fields.Choices{
	{Code: "biber", Label: "Biberstufe"},
	{Code: "wolf", Label: "Wolfsstufe"},
	{Code: "pfadi", Label: "Pfadistufe"},
	{Code: "pio", Label: "Piostufe"},
	{Code: "rover", Label: "Roverstufe"},
}
