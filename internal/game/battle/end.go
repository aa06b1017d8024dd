package battle

// CheckCombatEnd inspects the roster and returns ResultDefeat when every
// player and ally token is down, ResultVictory when every enemy token is
// down, and "" otherwise. Objective and npc tokens never affect the check.
//
// Defeat is evaluated before victory, so a board where both sides are wiped
// in the same action reads as a defeat. A roster with no enemy tokens at all
// reads as a victory.
//
// Must be called after every mutating action that changes HP or removes a
// token; movement alone cannot end combat.
func CheckCombatEnd(m *TacticalMap) Result {
	partyDown := true
	enemiesDown := true
	for _, t := range m.Tokens {
		switch t.Faction {
		case FactionPlayer, FactionAlly:
			if t.Alive() {
				partyDown = false
			}
		case FactionEnemy:
			if t.Alive() {
				enemiesDown = false
			}
		}
	}
	if partyDown {
		return ResultDefeat
	}
	if enemiesDown {
		return ResultVictory
	}
	return ""
}
