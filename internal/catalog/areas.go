package catalog

// AreaInfo describes an EIC area code.
type AreaInfo struct {
	Code     string `json:"code"`
	Name     string `json:"name"`
	Meaning  string `json:"meaning"`
	Timezone string `json:"timezone"`
}

// Bidding zones, control areas and market balance areas as listed by the
// transparency platform. Timezone is the IANA zone of the area.
var areas = map[string]AreaInfo{
	"10YDE-VE-------2": {Name: "DE_50HZ", Meaning: "50Hertz CA, DE(50HzT) BZA", Timezone: "Europe/Berlin"},
	"10YAL-KESH-----5": {Name: "AL", Meaning: "Albania, OST BZ / CA / MBA", Timezone: "Europe/Tirane"},
	"10YDE-RWENET---I": {Name: "DE_AMPRION", Meaning: "Amprion CA", Timezone: "Europe/Berlin"},
	"10YAT-APG------L": {Name: "AT", Meaning: "Austria, APG BZ / CA / MBA", Timezone: "Europe/Vienna"},
	"10Y1001A1001A51S": {Name: "BY", Meaning: "Belarus BZ / CA / MBA", Timezone: "Europe/Minsk"},
	"10YBE----------2": {Name: "BE", Meaning: "Belgium, Elia BZ / CA / MBA", Timezone: "Europe/Brussels"},
	"10YBA-JPCC-----D": {Name: "BA", Meaning: "Bosnia Herzegovina, NOS BiH BZ / CA / MBA", Timezone: "Europe/Sarajevo"},
	"10YCA-BULGARIA-R": {Name: "BG", Meaning: "Bulgaria, ESO BZ / CA / MBA", Timezone: "Europe/Sofia"},
	"10YDOM-CZ-DE-SKK": {Name: "CZ_DE_SK", Meaning: "BZ CZ+DE+SK BZ / BZA", Timezone: "Europe/Prague"},
	"10YHR-HEP------M": {Name: "HR", Meaning: "Croatia, HOPS BZ / CA / MBA", Timezone: "Europe/Zagreb"},
	"10YDOM-REGION-1V": {Name: "CWE", Meaning: "CWE Region", Timezone: "Europe/Brussels"},
	"10YCY-1001A0003J": {Name: "CY", Meaning: "Cyprus, Cyprus TSO BZ / CA / MBA", Timezone: "Asia/Nicosia"},
	"10YCZ-CEPS-----N": {Name: "CZ", Meaning: "Czech Republic, CEPS BZ / CA/ MBA", Timezone: "Europe/Prague"},
	"10Y1001A1001A63L": {Name: "DE_AT_LU", Meaning: "DE-AT-LU BZ", Timezone: "Europe/Berlin"},
	"10Y1001A1001A82H": {Name: "DE_LU", Meaning: "DE-LU BZ / MBA", Timezone: "Europe/Berlin"},
	"10Y1001A1001A65H": {Name: "DK", Meaning: "Denmark", Timezone: "Europe/Copenhagen"},
	"10YDK-1--------W": {Name: "DK_1", Meaning: "DK1 BZ / MBA", Timezone: "Europe/Copenhagen"},
	"10YDK-2--------M": {Name: "DK_2", Meaning: "DK2 BZ / MBA", Timezone: "Europe/Copenhagen"},
	"10Y1001A1001A796": {Name: "DK_CA", Meaning: "Denmark, Energinet CA", Timezone: "Europe/Copenhagen"},
	"10Y1001A1001A39I": {Name: "EE", Meaning: "Estonia, Elering BZ / CA / MBA", Timezone: "Europe/Tallinn"},
	"10YFI-1--------U": {Name: "FI", Meaning: "Finland, Fingrid BZ / CA / MBA", Timezone: "Europe/Helsinki"},
	"10YMK-MEPSO----8": {Name: "MK", Meaning: "Former Yugoslav Republic of Macedonia, MEPSO BZ / CA / MBA", Timezone: "Europe/Skopje"},
	"10YFR-RTE------C": {Name: "FR", Meaning: "France, RTE BZ / CA / MBA", Timezone: "Europe/Paris"},
	"10Y1001A1001A83F": {Name: "DE", Meaning: "Germany", Timezone: "Europe/Berlin"},
	"10YGR-HTSO-----Y": {Name: "GR", Meaning: "Greece, IPTO BZ / CA/ MBA", Timezone: "Europe/Athens"},
	"10YHU-MAVIR----U": {Name: "HU", Meaning: "Hungary, MAVIR CA / BZ / MBA", Timezone: "Europe/Budapest"},
	"IS": {Name: "IS", Meaning: "Iceland", Timezone: "Atlantic/Reykjavik"},
	"10Y1001A1001A59C": {Name: "IE_SEM", Meaning: "Ireland (SEM) BZ / MBA", Timezone: "Europe/Dublin"},
	"10YIE-1001A00010": {Name: "IE", Meaning: "Ireland, EirGrid CA", Timezone: "Europe/Dublin"},
	"10YIT-GRTN-----B": {Name: "IT", Meaning: "Italy, IT CA / MBA", Timezone: "Europe/Rome"},
	"10Y1001A1001A885": {Name: "IT_SACO_AC", Meaning: "Italy_Saco_AC", Timezone: "Europe/Rome"},
	"10Y1001C--00096J": {Name: "IT_CALA", Meaning: "IT-Calabria BZ", Timezone: "Europe/Rome"},
	"10Y1001A1001A893": {Name: "IT_SACO_DC", Meaning: "Italy_Saco_DC", Timezone: "Europe/Rome"},
	"10Y1001A1001A699": {Name: "IT_BRNN", Meaning: "IT-Brindisi BZ", Timezone: "Europe/Rome"},
	"10Y1001A1001A70O": {Name: "IT_CNOR", Meaning: "IT-Centre-North BZ", Timezone: "Europe/Rome"},
	"10Y1001A1001A71M": {Name: "IT_CSUD", Meaning: "IT-Centre-South BZ", Timezone: "Europe/Rome"},
	"10Y1001A1001A72K": {Name: "IT_FOGN", Meaning: "IT-Foggia BZ", Timezone: "Europe/Rome"},
	"10Y1001A1001A66F": {Name: "IT_GR", Meaning: "IT-GR BZ", Timezone: "Europe/Rome"},
	"10Y1001A1001A84D": {Name: "IT_MACRO_NORTH", Meaning: "IT-MACROZONE NORTH MBA", Timezone: "Europe/Rome"},
	"10Y1001A1001A85B": {Name: "IT_MACRO_SOUTH", Meaning: "IT-MACROZONE SOUTH MBA", Timezone: "Europe/Rome"},
	"10Y1001A1001A877": {Name: "IT_MALTA", Meaning: "IT-Malta BZ", Timezone: "Europe/Rome"},
	"10Y1001A1001A73I": {Name: "IT_NORD", Meaning: "IT-North BZ", Timezone: "Europe/Rome"},
	"10Y1001A1001A80L": {Name: "IT_NORD_AT", Meaning: "IT-North-AT BZ", Timezone: "Europe/Rome"},
	"10Y1001A1001A68B": {Name: "IT_NORD_CH", Meaning: "IT-North-CH BZ", Timezone: "Europe/Rome"},
	"10Y1001A1001A81J": {Name: "IT_NORD_FR", Meaning: "IT-North-FR BZ", Timezone: "Europe/Rome"},
	"10Y1001A1001A67D": {Name: "IT_NORD_SI", Meaning: "IT-North-SI BZ", Timezone: "Europe/Rome"},
	"10Y1001A1001A76C": {Name: "IT_PRGP", Meaning: "IT-Priolo BZ", Timezone: "Europe/Rome"},
	"10Y1001A1001A77A": {Name: "IT_ROSN", Meaning: "IT-Rossano BZ", Timezone: "Europe/Rome"},
	"10Y1001A1001A74G": {Name: "IT_SARD", Meaning: "IT-Sardinia BZ", Timezone: "Europe/Rome"},
	"10Y1001A1001A75E": {Name: "IT_SICI", Meaning: "IT-Sicily BZ", Timezone: "Europe/Rome"},
	"10Y1001A1001A788": {Name: "IT_SUD", Meaning: "IT-South BZ", Timezone: "Europe/Rome"},
	"10Y1001A1001A50U": {Name: "RU_KGD", Meaning: "Kaliningrad BZ / CA / MBA", Timezone: "Europe/Kaliningrad"},
	"10YLV-1001A00074": {Name: "LV", Meaning: "Latvia, AST BZ / CA / MBA", Timezone: "Europe/Riga"},
	"10YLT-1001A0008Q": {Name: "LT", Meaning: "Lithuania, Litgrid BZ / CA / MBA", Timezone: "Europe/Vilnius"},
	"10YLU-CEGEDEL-NQ": {Name: "LU", Meaning: "Luxembourg, CREOS CA", Timezone: "Europe/Luxembourg"},
	"10Y1001A1001A93C": {Name: "MT", Meaning: "Malta, Malta BZ / CA / MBA", Timezone: "Europe/Malta"},
	"10YCS-CG-TSO---S": {Name: "ME", Meaning: "Montenegro, CGES BZ / CA / MBA", Timezone: "Europe/Podgorica"},
	"10YGB----------A": {Name: "GB", Meaning: "National Grid BZ / CA/ MBA", Timezone: "Europe/London"},
	"10YNL----------L": {Name: "NL", Meaning: "Netherlands, TenneT NL BZ / CA/ MBA", Timezone: "Europe/Amsterdam"},
	"10YNO-1--------2": {Name: "NO_1", Meaning: "NO1 BZ / MBA", Timezone: "Europe/Oslo"},
	"10YNO-2--------T": {Name: "NO_2", Meaning: "NO2 BZ / MBA", Timezone: "Europe/Oslo"},
	"10YNO-3--------J": {Name: "NO_3", Meaning: "NO3 BZ / MBA", Timezone: "Europe/Oslo"},
	"10YNO-4--------9": {Name: "NO_4", Meaning: "NO4 BZ / MBA", Timezone: "Europe/Oslo"},
	"10Y1001A1001A48H": {Name: "NO_5", Meaning: "NO5 BZ / MBA", Timezone: "Europe/Oslo"},
	"10YNO-0--------C": {Name: "NO", Meaning: "Norway, Norway MBA, Stattnet CA", Timezone: "Europe/Oslo"},
	"10YDOM-1001A082L": {Name: "PL_CZ", Meaning: "PL-CZ BZA / CA", Timezone: "Europe/Warsaw"},
	"10YDOM-1001A083J": {Name: "CZ_SK", Meaning: "CZ_SK BZA / CA", Timezone: "Europe/Warsaw"},
	"10YPL-AREA-----S": {Name: "PL", Meaning: "Poland, PSE SA BZ / BZA / CA / MBA", Timezone: "Europe/Warsaw"},
	"10YPT-REN------W": {Name: "PT", Meaning: "Portugal, REN BZ / CA / MBA", Timezone: "Europe/Lisbon"},
	"10Y1001A1001A990": {Name: "MD", Meaning: "Republic of Moldova, Moldelectica BZ/CA/MBA", Timezone: "Europe/Chisinau"},
	"10YRO-TEL------P": {Name: "RO", Meaning: "Romania, Transelectrica BZ / CA/ MBA", Timezone: "Europe/Bucharest"},
	"10Y1001A1001A49F": {Name: "RU", Meaning: "Russia BZ / CA / MBA", Timezone: "Europe/Moscow"},
	"10Y1001A1001A44P": {Name: "SE_1", Meaning: "SE1 BZ / MBA", Timezone: "Europe/Stockholm"},
	"10Y1001A1001A45N": {Name: "SE_2", Meaning: "SE2 BZ / MBA", Timezone: "Europe/Stockholm"},
	"10Y1001A1001A46L": {Name: "SE_3", Meaning: "SE3 BZ / MBA", Timezone: "Europe/Stockholm"},
	"10Y1001A1001A47J": {Name: "SE_4", Meaning: "SE4 BZ / MBA", Timezone: "Europe/Stockholm"},
	"10YCS-SERBIATSOV": {Name: "RS", Meaning: "Serbia, EMS BZ / CA / MBA", Timezone: "Europe/Belgrade"},
	"10YSK-SEPS-----K": {Name: "SK", Meaning: "Slovakia, SEPS BZ / CA / MBA", Timezone: "Europe/Bratislava"},
	"10YSI-ELES-----O": {Name: "SI", Meaning: "Slovenia, ELES BZ / CA / MBA", Timezone: "Europe/Ljubljana"},
	"10Y1001A1001A016": {Name: "GB_NIR", Meaning: "Northern Ireland, SONI CA", Timezone: "Europe/Belfast"},
	"10YES-REE------0": {Name: "ES", Meaning: "Spain, REE BZ / CA / MBA", Timezone: "Europe/Madrid"},
	"10YSE-1--------K": {Name: "SE", Meaning: "Sweden, Sweden MBA, SvK CA", Timezone: "Europe/Stockholm"},
	"10YCH-SWISSGRIDZ": {Name: "CH", Meaning: "Switzerland, Swissgrid BZ / CA / MBA", Timezone: "Europe/Zurich"},
	"10YDE-EON------1": {Name: "DE_TENNET", Meaning: "TenneT GER CA", Timezone: "Europe/Berlin"},
	"10YDE-ENBW-----N": {Name: "DE_TRANSNET", Meaning: "TransnetBW CA", Timezone: "Europe/Berlin"},
	"10YTR-TEIAS----W": {Name: "TR", Meaning: "Turkey BZ / CA / MBA", Timezone: "Europe/Istanbul"},
	"10Y1001C--00003F": {Name: "UA", Meaning: "Ukraine, Ukraine BZ, MBA", Timezone: "Europe/Kiev"},
	"10Y1001A1001A869": {Name: "UA_DOBTPP", Meaning: "Ukraine-DobTPP CTA", Timezone: "Europe/Kiev"},
	"10YUA-WEPS-----0": {Name: "UA_BEI", Meaning: "Ukraine BEI CTA", Timezone: "Europe/Kiev"},
	"10Y1001C--000182": {Name: "UA_IPS", Meaning: "Ukraine IPS CTA", Timezone: "Europe/Kiev"},
}

var areaMeanings = func() map[string]string {
	m := make(map[string]string, len(areas))
	for code, a := range areas {
		m[code] = a.Meaning
	}
	return m
}()
