package catalog

import "finn-sprint/internal/models"

// Статический каталог уровней. Это фиксированная таблица в коде,
// а не данные в БД: id никогда не переиспользуются, содержимое
// не редактируется пользователями. В user_progress хранится только level_id.
var levels = []models.Level{
	{
		ID:          1,
		Title:       "Greetings & Introductions",
		Description: "Learn basic greetings, self-introduction phrases, and polite expressions.",
		Difficulty:  models.Beginner,
		Examples: []models.Example{
			{Finnish: "Hei", English: "Hi"},
			{Finnish: "Moi", English: "Hi (informal)"},
			{Finnish: "Hyvää huomenta", English: "Good morning"},
			{Finnish: "Kiitos", English: "Thank you"},
			{Finnish: "Ole hyvä", English: "You're welcome"},
		},
	},
	{
		ID:          2,
		Title:       "Family & Relationships",
		Description: "Vocabulary for family members and phrases to talk about relationships.",
		Difficulty:  models.Beginner,
		Examples: []models.Example{
			{Finnish: "äiti", English: "mother"},
			{Finnish: "isä", English: "father"},
			{Finnish: "veli", English: "brother"},
			{Finnish: "sisko", English: "sister"},
			{Finnish: "perhe", English: "family"},
		},
	},
	{
		ID:          3,
		Title:       "Numbers & Counting",
		Description: "Cardinal and ordinal numbers; practice counting and simple math expressions in Finnish.",
		Difficulty:  models.Beginner,
		Examples: []models.Example{
			{Finnish: "yksi", English: "one"},
			{Finnish: "kaksi", English: "two"},
			{Finnish: "kolme", English: "three"},
			{Finnish: "neljä", English: "four"},
			{Finnish: "viisi", English: "five"},
		},
	},
	{
		ID:          4,
		Title:       "Colors & Shapes",
		Description: "Learn color names and basic shapes plus descriptive adjectives.",
		Difficulty:  models.Beginner,
		Examples: []models.Example{
			{Finnish: "punainen", English: "red"},
			{Finnish: "sininen", English: "blue"},
			{Finnish: "vihreä", English: "green"},
			{Finnish: "ympyrä", English: "circle"},
			{Finnish: "neliö", English: "square"},
		},
	},
	{
		ID:          5,
		Title:       "Time & Dates",
		Description: "Telling time, days of the week, months, seasons, and how to say dates.",
		Difficulty:  models.Beginner,
		Examples: []models.Example{
			{Finnish: "maanantai", English: "Monday"},
			{Finnish: "tiistai", English: "Tuesday"},
			{Finnish: "kesä", English: "summer"},
			{Finnish: "talvi", English: "winter"},
			{Finnish: "kello", English: "clock"},
		},
	},
	{
		ID:          21,
		Title:       "Animals & Pets",
		Description: "Common animals and pets, including names, sounds, and basic behaviors.",
		Difficulty:  models.Intermediate,
		Examples: []models.Example{
			{Finnish: "koira", English: "dog"},
			{Finnish: "kissa", English: "cat"},
			{Finnish: "lintu", English: "bird"},
			{Finnish: "kala", English: "fish"},
		},
	},
	{
		ID:          22,
		Title:       "Food & Drink",
		Description: "Everyday groceries, meals, and phrases for ordering in a café or restaurant.",
		Difficulty:  models.Intermediate,
		Examples: []models.Example{
			{Finnish: "leipä", English: "bread"},
			{Finnish: "maito", English: "milk"},
			{Finnish: "vesi", English: "water"},
			{Finnish: "kahvi", English: "coffee"},
			{Finnish: "Saisinko laskun?", English: "Could I have the bill?"},
		},
	},
	{
		ID:          23,
		Title:       "Travel & Directions",
		Description: "Transport vocabulary and asking for or giving directions in a city.",
		Difficulty:  models.Intermediate,
		Examples: []models.Example{
			{Finnish: "juna", English: "train"},
			{Finnish: "bussi", English: "bus"},
			{Finnish: "asema", English: "station"},
			{Finnish: "oikealle", English: "to the right"},
			{Finnish: "vasemmalle", English: "to the left"},
		},
	},
	{
		ID:          24,
		Title:       "Weather & Nature",
		Description: "Talking about the weather, seasons, and the Finnish outdoors.",
		Difficulty:  models.Intermediate,
		Examples: []models.Example{
			{Finnish: "Sataa", English: "It is raining"},
			{Finnish: "Aurinko paistaa", English: "The sun is shining"},
			{Finnish: "lumi", English: "snow"},
			{Finnish: "metsä", English: "forest"},
			{Finnish: "järvi", English: "lake"},
		},
	},
	{
		ID:          41,
		Title:       "Idioms & Expressions",
		Description: "Common Finnish idioms, proverbs, and culturally unique expressions.",
		Difficulty:  models.Advanced,
		Examples: []models.Example{
			{Finnish: "Parempi myöhään kuin ei milloinkaan", English: "Better late than never"},
			{Finnish: "Ei kannata mennä merta edemmäs kalaan", English: "Don't go fishing beyond the sea (meaning: what you're looking for might be closer than you think)"},
		},
	},
	{
		ID:          42,
		Title:       "Formal & Business Finnish",
		Description: "Polite register for emails, meetings, and official situations.",
		Difficulty:  models.Advanced,
		Examples: []models.Example{
			{Finnish: "Ystävällisin terveisin", English: "Best regards"},
			{Finnish: "Kokous alkaa kello yhdeksän", English: "The meeting starts at nine"},
			{Finnish: "Voisitteko toistaa?", English: "Could you repeat that? (formal)"},
		},
	},
	{
		ID:          43,
		Title:       "Spoken Finnish & Slang",
		Description: "Colloquial forms and everyday slang you will hear on the street.",
		Difficulty:  models.Advanced,
		Examples: []models.Example{
			{Finnish: "Mitä kuuluu?", English: "How are you?"},
			{Finnish: "Ei se mitään", English: "No worries"},
			{Finnish: "kännykkä", English: "mobile phone (colloquial)"},
			{Finnish: "sori", English: "sorry (colloquial)"},
		},
	},
}

// All возвращает весь каталог в исходном порядке.
func All() []models.Level {
	return levels
}

// ByDifficulty возвращает все уровни заданной сложности,
// сохраняя порядок каталога. Если таких нет - пустой срез, не ошибка.
func ByDifficulty(d models.Difficulty) []models.Level {
	result := []models.Level{}
	for _, l := range levels {
		if l.Difficulty == d {
			result = append(result, l)
		}
	}
	return result
}

// DifficultyOf возвращает сложность уровня по id.
// Для неизвестного id возвращается Beginner - это осознанное
// упрощение, НЕ проверка существования уровня.
func DifficultyOf(levelID int) models.Difficulty {
	if l, ok := FindByID(levelID); ok {
		return l.Difficulty
	}
	return models.Beginner
}

// FindByID ищет уровень по id. Используется в том числе для навигации
// на соседние уровни (id-1, id+1): отсутствие уровня просто
// отключает соответствующую кнопку.
func FindByID(levelID int) (models.Level, bool) {
	for _, l := range levels {
		if l.ID == levelID {
			return l, true
		}
	}
	return models.Level{}, false
}
