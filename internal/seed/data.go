package seed

import "vecinu/internal/models"

var (
	firstNames = []string{
		"Andrei", "Ana", "Alexandru", "Maria", "Mihai", "Elena", "Ion", "Ioana",
		"Gheorghe", "Andreea", "Vasile", "Cristina", "Ștefan", "Mihaela", "Radu", "Alina",
		"Florin", "Raluca", "Bogdan", "Diana", "Cătălin", "Oana", "Sorin", "Roxana",
		"Adrian", "Simona", "Tudor", "Gabriela", "Vlad", "Irina", "Dan", "Laura",
		"Ciprian", "Camelia", "Lucian", "Bianca", "Marius", "Corina", "Paul", "Daniela",
	}

	lastNames = []string{
		"Popescu", "Pop", "Ionescu", "Popa", "Rusu", "Moldovan", "Mureșan", "Stan",
		"Dumitru", "Constantin", "Marin", "Matei", "Lazăr", "Ciobanu", "Toma", "Oprea",
		"Munteanu", "Sabău", "Bogdan", "Crișan", "Rus", "Hossu", "Pașca", "Cozma",
		"Szabo", "Nagy", "Kovacs", "Moga", "Bălan", "Tătar", "Luca", "Suciu",
	}

	bios = []string{
		"Locuiesc în cartier de peste zece ani.",
		"Pasionat de grădinărit și bicicletă.",
		"Mamă a doi copii, mereu în căutare de activități prin zonă.",
		"Programator, iubitor de cafea de specialitate.",
		"Pensionar, ajut cu drag vecinii la nevoie.",
		"Student la UBB, abia m-am mutat aici.",
		"Am un cățel pe care îl plimb zilnic prin parc.",
		"Meșter la toate, repar biciclete în weekend.",
	}

	commentOpeners = []string{
		"Mulțumesc pentru informație!",
		"Sunt interesat.",
		"Am avut aceeași problemă.",
		"Recomand cu încredere.",
		"Se mai găsește?",
		"Vă scriu în privat.",
		"Super idee!",
		"Îl cunosc, e de încredere.",
	}
)

// postTemplate shapes a generated post. title and body are format strings;
// title takes the subject, body takes the subject and a filler sentence.
type postTemplate struct {
	title    string
	body     string
	subjects []string
}

var postTemplates = map[models.PostCategory]postTemplate{
	models.CategoryAlert: {
		title:    "Atenție: %s",
		body:     "Vă anunț că %s în zona noastră. %s",
		subjects: []string{"apă oprită mâine", "mașină spartă pe stradă", "lucrări la asfalt", "câini fără stăpân", "pană de curent"},
	},
	models.CategorySell: {
		title:    "Vând %s",
		body:     "Vând %s în stare foarte bună, ridicare din cartier. %s",
		subjects: []string{"bicicletă de oraș", "canapea extensibilă", "cărucior copii", "frigider", "masă de lemn", "scaun de birou"},
	},
	models.CategoryBuy: {
		title:    "Caut să cumpăr %s",
		body:     "Caut %s la mâna a doua, vă rog scrieți-mi. %s",
		subjects: []string{"un pătuț", "o mașină de spălat", "cărți pentru clasa a V-a", "un aspirator", "o scară"},
	},
	models.CategoryService: {
		title:    "Ofer servicii de %s",
		body:     "Ofer servicii de %s pentru vecini, prețuri corecte. %s",
		subjects: []string{"instalații sanitare", "meditații la matematică", "curățenie", "reparații electrice", "plimbat câini"},
	},
	models.CategoryQuestion: {
		title:    "Întrebare despre %s",
		body:     "Știe cineva ceva despre %s? %s",
		subjects: []string{"un medic de familie bun", "program la primărie", "o croitorie prin zonă", "parcarea de reședință", "grădinițele din cartier"},
	},
	models.CategoryEvent: {
		title:    "Eveniment: %s",
		body:     "Vă invităm la %s, sâmbăta aceasta. %s",
		subjects: []string{"curățenie în parc", "târg de vechituri", "seară de jocuri", "plantare de copaci", "concert în curte"},
	},
	models.CategoryLostFound: {
		title:    "Pierdut/găsit: %s",
		body:     "Am găsit %s lângă stația de autobuz. %s",
		subjects: []string{"un set de chei", "o pisică tigrată", "un portofel maro", "o geacă de copil", "un telefon"},
	},
}
