package pipeline

import "arcflow/pkg/domain"

const scenarioScheme = "BN-10INMUM-NSLN-SP"

func scenarioInput() Input {
	return Input{
		Schemes: []domain.Scheme{{Code: scenarioScheme, Description: "10in mum natural season", GenusCode: "MUM"}},
		Lines: []domain.SchemeLine{
			{SchemeCode: scenarioScheme, LineNo: 10000, Phase: "GROW", Duration: 6, QtyPerArea: 4},
		},
		Preferences: []domain.Preference{
			{ProductionItemNo: "4000084", VariantCode: "B01", LocationCode: "KY01", SchemeCode: scenarioScheme},
		},
	}
}

func rule(start, end, weeks int, phase domain.Phase) domain.SchemeRule {
	return domain.SchemeRule{StartWeek: start, EndWeek: end, GrowWeeks: weeks, Phase: phase}
}
