package analysis

// valence holds word polarity on the usual -4..+4 sentiment lexicon scale.
var valence = map[string]float64{
	"able": 0.7, "accept": 1.6, "accepted": 1.1, "admire": 2.1, "agree": 1.5,
	"amazing": 2.8, "appreciate": 1.7, "appreciated": 2.3, "awesome": 3.1,
	"beautiful": 2.9, "benefit": 2.0, "best": 3.2, "better": 1.9, "bonus": 2.5,
	"brilliant": 2.8, "calm": 1.3, "celebrate": 2.7, "cheerful": 2.5,
	"clean": 1.7, "comfortable": 2.3, "congrats": 2.4, "congratulations": 2.9,
	"cool": 1.3, "delight": 2.9, "delighted": 3.1, "eager": 1.5, "easy": 1.9,
	"enjoy": 2.2, "enjoyed": 2.3, "excellent": 2.7, "excited": 1.4,
	"exciting": 2.2, "fantastic": 2.6, "fine": 0.8, "fortunate": 1.9,
	"free": 2.3, "fun": 2.3, "glad": 2.0, "good": 1.9, "grateful": 2.0,
	"great": 3.1, "happy": 2.7, "help": 1.7, "helpful": 1.8, "hope": 1.9,
	"hopefully": 1.7, "impressive": 2.3, "improve": 1.9, "improved": 2.1,
	"interesting": 1.7, "kind": 2.4, "like": 1.5, "love": 3.2, "lovely": 2.8,
	"lucky": 1.8, "nice": 1.8, "ok": 1.2, "okay": 0.9, "perfect": 2.7,
	"pleasant": 2.3, "please": 1.3, "pleased": 1.9, "positive": 2.6,
	"promising": 1.7, "proud": 2.1, "recommend": 1.5, "relief": 2.1,
	"resolved": 0.7, "reward": 2.1, "safe": 1.9, "success": 2.7,
	"successful": 2.8, "support": 1.7, "sure": 1.3, "thank": 1.5,
	"thanks": 1.9, "thankful": 2.7, "welcome": 2.0, "win": 2.8, "wonderful": 2.7,
	"wow": 2.8, "yes": 1.7,

	"abandon": -1.9, "abuse": -3.2, "afraid": -2.2, "angry": -2.3,
	"annoyed": -1.6, "annoying": -1.7, "anxious": -1.0, "awful": -2.0,
	"bad": -2.5, "block": -1.1, "blocked": -1.4, "boring": -1.3, "broken": -2.1,
	"cancel": -1.0, "cancelled": -1.0, "complaint": -1.5, "concern": -0.4,
	"concerned": -1.3, "confused": -1.3, "crash": -1.7, "critical": -1.3,
	"damage": -2.2, "danger": -2.4, "delay": -1.3, "delayed": -0.9,
	"difficult": -1.5, "disappointed": -1.9, "disappointing": -2.2,
	"error": -1.7, "fail": -2.5, "failed": -2.3, "failure": -2.3,
	"fear": -2.2, "frustrated": -2.4, "frustrating": -1.9, "hate": -2.7,
	"horrible": -2.5, "hurt": -2.4, "issue": -0.6, "late": -0.4, "lose": -1.7,
	"loss": -1.3, "lost": -1.3, "mistake": -1.4, "miss": -0.6, "missed": -1.2,
	"never": -0.3, "no": -1.2, "overdue": -1.0, "pain": -2.3, "poor": -2.1,
	"problem": -1.7, "problems": -1.7, "reject": -1.7, "rejected": -2.3,
	"risk": -1.1, "sad": -2.1, "scam": -2.9, "sorry": -0.3, "stress": -1.8,
	"stressed": -1.4, "stuck": -1.0, "terrible": -2.1, "threat": -2.4,
	"trouble": -1.7, "unfortunately": -1.4, "unhappy": -1.8, "upset": -1.6,
	"urgent": -0.8, "warning": -1.4, "worried": -1.2, "worse": -2.1,
	"worst": -3.1, "wrong": -2.1,
}

// boosters scale the valence of the word that follows them.
var boosters = map[string]float64{
	"absolutely": boostIncr, "completely": boostIncr, "extremely": boostIncr,
	"highly": boostIncr, "incredibly": boostIncr, "really": boostIncr,
	"so": boostIncr, "totally": boostIncr, "very": boostIncr,
	"barely": boostDecr, "hardly": boostDecr, "kinda": boostDecr,
	"slightly": boostDecr, "somewhat": boostDecr,
}

var negations = map[string]bool{
	"aint": true, "cannot": true, "cant": true, "didnt": true, "doesnt": true,
	"dont": true, "hardly": true, "isnt": true, "neither": true, "never": true,
	"no": true, "nobody": true, "none": true, "nor": true, "not": true,
	"nothing": true, "nowhere": true, "shouldnt": true, "wasnt": true,
	"without": true, "wont": true, "wouldnt": true,
}

// stopWords is the English stop list used for keyword extraction.
var stopWords = map[string]bool{}

func init() {
	for _, w := range []string{
		"a", "about", "above", "after", "again", "against", "all", "also", "am",
		"an", "and", "any", "are", "as", "at", "be", "because", "been", "before",
		"being", "below", "between", "both", "but", "by", "can", "could", "did",
		"do", "does", "doing", "done", "down", "during", "each", "either", "else",
		"enough", "even", "ever", "every", "few", "for", "from", "further", "get",
		"go", "had", "has", "have", "having", "he", "her", "here", "hers",
		"herself", "him", "himself", "his", "how", "however", "i", "if", "in",
		"into", "is", "it", "its", "itself", "just", "least", "less", "made",
		"make", "many", "may", "me", "might", "more", "most", "much", "must",
		"my", "myself", "neither", "no", "nor", "not", "now", "of", "off", "often",
		"on", "once", "only", "or", "other", "our", "ours", "ourselves", "out",
		"over", "own", "per", "please", "put", "quite", "rather", "re", "really",
		"regarding", "said", "same", "say", "see", "seem", "she", "should",
		"show", "since", "so", "some", "still", "such", "take", "than", "that",
		"the", "their", "theirs", "them", "themselves", "then", "there", "these",
		"they", "this", "those", "though", "through", "thus", "to", "too",
		"under", "until", "up", "upon", "us", "used", "using", "various", "very",
		"via", "was", "we", "well", "were", "what", "whatever", "when", "where",
		"whether", "which", "while", "who", "whole", "whom", "whose", "why",
		"will", "with", "within", "without", "would", "yet", "you", "your",
		"yours", "yourself", "yourselves",
	} {
		stopWords[w] = true
	}
}
