package items

import "fmt"

// StatKind is an item attribute
type StatKind int

const (
	StatMinAC StatKind = iota
	StatMaxAC
	StatMinMR
	StatMaxMR
	StatMinDC
	StatMaxDC
	StatMinMC
	StatMaxMC
	StatMinSC
	StatMaxSC
	StatHealth
	StatMana
	StatAccuracy
	StatAgility
	StatAttackSpeed
	StatLuck
	StatStrength
	StatLight
	StatFireAttack
	StatIceAttack
	StatLightningAttack
	StatWindAttack
	StatHolyAttack
	StatDarkAttack
	StatPhantomAttack
	StatFireResistance
	StatIceResistance
	StatLightningResistance
	StatWindResistance
	StatHolyResistance
	StatDarkResistance
	StatPhantomResistance
	StatPhysicalResistance
	StatLifeSteal
	StatCriticalChance
	StatCriticalDamage
	StatDamageReduction
	StatReflectDamage
	StatBlockChance
	StatEvasionChance
	StatMagicShield
	StatHealing
	StatBagWeight
	StatWearWeight
	StatHandWeight
	StatPickUpRadius
	StatExperienceRate
	StatDropRate
	StatGoldRate
	statKindCount
)

var statNames = [statKindCount]string{
	"MinAC", "MaxAC", "MinMR", "MaxMR",
	"MinDC", "MaxDC", "MinMC", "MaxMC", "MinSC", "MaxSC",
	"Health", "Mana", "Accuracy", "Agility", "AttackSpeed", "Luck", "Strength", "Light",
	"FireAttack", "IceAttack", "LightningAttack", "WindAttack", "HolyAttack", "DarkAttack", "PhantomAttack",
	"FireResistance", "IceResistance", "LightningResistance", "WindResistance", "HolyResistance",
	"DarkResistance", "PhantomResistance", "PhysicalResistance",
	"LifeSteal", "CriticalChance", "CriticalDamage", "DamageReduction", "ReflectDamage",
	"BlockChance", "EvasionChance", "MagicShield", "Healing",
	"BagWeight", "WearWeight", "HandWeight", "PickUpRadius",
	"ExperienceRate", "DropRate", "GoldRate",
}

func (k StatKind) String() string {
	if k < 0 || k >= statKindCount {
		return fmt.Sprintf("Unknown(%d)", int(k))
	}
	return statNames[k]
}

// ParseStatKind converts a raw client value into a StatKind
func ParseStatKind(v int) (StatKind, error) {
	if v < 0 || v >= int(statKindCount) {
		return 0, fmt.Errorf("%w: stat kind %d out of range", ErrValidation, v)
	}
	return StatKind(v), nil
}

// StatGroup is a labelled set of stat kinds for editor listings
type StatGroup struct {
	Name  string     `json:"name"`
	Kinds []StatKind `json:"kinds"`
}

// StatGroups returns the editor grouping of stat kinds
func StatGroups() []StatGroup {
	return []StatGroup{
		{"Defense", []StatKind{StatMinAC, StatMaxAC, StatMinMR, StatMaxMR}},
		{"Attack", []StatKind{StatMinDC, StatMaxDC, StatMinMC, StatMaxMC, StatMinSC, StatMaxSC}},
		{"Attributes", []StatKind{StatHealth, StatMana, StatAccuracy, StatAgility, StatAttackSpeed, StatLuck, StatStrength, StatLight}},
		{"Elemental Attack", []StatKind{StatFireAttack, StatIceAttack, StatLightningAttack, StatWindAttack, StatHolyAttack, StatDarkAttack, StatPhantomAttack}},
		{"Elemental Resistance", []StatKind{StatFireResistance, StatIceResistance, StatLightningResistance, StatWindResistance, StatHolyResistance, StatDarkResistance, StatPhantomResistance, StatPhysicalResistance}},
		{"Special", []StatKind{StatLifeSteal, StatCriticalChance, StatCriticalDamage, StatDamageReduction, StatReflectDamage, StatBlockChance, StatEvasionChance, StatMagicShield, StatHealing}},
		{"Weight", []StatKind{StatBagWeight, StatWearWeight, StatHandWeight, StatPickUpRadius}},
		{"Rates", []StatKind{StatExperienceRate, StatDropRate, StatGoldRate}},
	}
}
